// Package testing provides test infrastructure for the shadow oracle.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: an in-memory ledger with a manual clock and the shadow oracle bound to it
//   - Assertions: helpers for prices, account shapes, error kinds and log entries
//
// # Basic Usage
//
//	func TestCrash(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//	    py := env.Oracle().Pyth()
//
//	    feed, err := py.CreatePriceFeed(oracle.NewUSD(100, 0.1))
//	    require.NoError(t, err)
//
//	    env.AdvanceSlots(10)
//	    require.NoError(t, py.SimulateCrash(feed, 50))
//
//	    testing.RequirePriceNear(t, py, feed, 50, 1e-9)
//	    testing.RequireFresh(t, env, py, feed)
//	}
//
// # TestEnv
//
// TestEnv starts at slot 1, January 1, 2024, 00:00:00 UTC. The clock only
// moves when told to:
//
//	env.Advance(time.Minute) // time only
//	env.AdvanceSlots(5)      // slot and 5*400ms
//	env.Now()                // unix timestamp
//	env.Slot()               // current slot
//
// Raw accounts can be inspected through env.Account and env.Exists. Every
// ledger and provider log entry is captured and available from env.Logs.
//
// Provider packages importing this package must use an external test package
// (package pyth_test) since the shadow facade imports them.
package testing
