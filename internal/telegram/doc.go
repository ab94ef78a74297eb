// Package telegram provides Telegram Bot API integration for announcing the
// weekly high impact calendar.
//
// The package sends an HTML digest message and the week's iCalendar feed as a
// document using plain HTTP requests against the Bot API.
//
// Authentication requires a bot token (from @BotFather) and chat ID.
package telegram
