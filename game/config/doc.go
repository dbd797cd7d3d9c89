// Package config holds the deployment-tunable limits for the game server.
//
// All values have safe defaults; overrides come from environment variables
// (typically loaded from a .env file at startup):
//
//	RPS_MAX_ROOM_MEMBERS    maximum connections per room (default 10)
//	RPS_SEND_BUFFER_SIZE    per-connection outbound queue length
//	RPS_MESSAGES_PER_SECOND inbound rate limit per connection
//	RPS_MESSAGE_BURST       inbound burst allowance per connection
//
// Load never fails on a malformed override; it keeps the default and lets
// Validate report values that are out of range.
package config
