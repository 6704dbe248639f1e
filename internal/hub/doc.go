// Package hub implements the client side of the SpotiBuds realtime
// push channels, which speak the SignalR JSON hub protocol over
// websockets.
//
// Two channels exist in production: a friends hub (friend requests,
// chat messages) and a notifications hub. Each [Client] owns its own
// connection and reconnect state machine; the channels fail and
// recover independently.
//
// The hub layer does not deduplicate events. Consumers register
// handlers per component identifier and are responsible for applying
// events idempotently ("remove by id if present").
package hub
