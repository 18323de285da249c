package service

import "sync"

// simMu serializes engine ticks against mutating player commands. Both
// sides read a whole sheet, modify it, and write it back; a command
// landing between a tick's snapshot read and its write-back would be
// erased by the write. Ticks and commands are short, so one coarse lock
// covers the whole simulation.
var simMu sync.Mutex
