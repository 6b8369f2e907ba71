package adapter

// Code is the opaque unique identifier of a tradable instrument.
type Code string

// Price is an instrument price in the account currency's smallest unit.
type Price int64

// Amount is a capital amount in the account currency's smallest unit.
type Amount int64

// Quantity is a share count.
type Quantity int64
