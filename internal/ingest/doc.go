/*
Ingest streams live ticks from a websocket endpoint.

# Module
  - websocket handler: subscribes symbols over a JSON request frame and
    bridges decoded ticks into bounded point queues

# Source
  - market data from websocket

# Produce
  - one pull enumerator per subscribed configuration, consumed by the feed

It is the live data queue handler of the feed; the endpoint and channel
template come from configuration, not from a broker binding.
*/
package ingest
