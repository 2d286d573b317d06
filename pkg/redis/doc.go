// Package redis opens go-redis clients from a [Config] and provides the
// health and shutdown hooks used by the runtime. The session package
// stores sessions on top of the returned client.
package redis
