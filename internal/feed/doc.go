/*
Feed implements the live market-data feed core.

# Module
  - handler source: subscribes symbols against the external push producer,
    bridging callbacks through bounded point queues
  - custom-data exchange: shared worker advancing polled producers
  - subscription factory: assembles the per-request transformer pipeline
    (price scale, fill-forward, market-hours filter, frontier gate) and the
    warmup prefix
  - lifecycle: Initialize / CreateSubscription / RemoveSubscription / Exit
    over the configuration-keyed subscription set

# Source
 1. push data from the data queue handler's callback threads
 2. polled data from the custom-data exchange worker
 3. warmup replay from the file-based factory and the history provider

# Produce
  - one ordered, frontier-gated pull enumerator per subscription, consumed
    by the algorithm's time-slice loop
*/
package feed
