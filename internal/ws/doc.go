// Package ws provides WebSocket connection handling shared by the terminal
// and browser session transports.
//
// The package implements:
//   - Client: one WebSocket connection with a buffered outbound queue
//   - Hub: the attached-client set of a session, with ordered broadcast
//   - Message: the wire format for both session protocols
//
// Each session owns one Hub. Broadcast order follows production order: a
// session's event handlers are the only producer, and every client's send
// queue preserves enqueue order.
package ws
