/*
Engine implements the order-execution coordinator.

# Module
  - event router: consumes brokerage callbacks from the in-memory bus
  - condition classifier: partitions loaded conditions into buy/sell triggers
  - buy admission queue: serialized, throttled sizing and submission of buys
  - sell dispatcher: immediate full-position liquidation
  - request correlator: single-flight price/balance lookups
  - position ledger: authoritative holdings and committed capital

# Source
 1. condition/scan/transition/fill callbacks from the brokerage session
 2. deferred settle events scheduled by the engine itself

# Produce
  - market orders to the brokerage session
  - order/fill rows to the trade journal
*/
package engine
