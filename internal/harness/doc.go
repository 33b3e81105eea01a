// Package harness runs scripted user sessions from YAML scenario files.
//
// Each scenario gets a fresh in-memory store, a fake directory and a
// deterministic clock, then executes its flow against a real session. The
// trace of step outcomes is compared against golden files, and assertions
// check the trace and the final page.
//
// # Scenario Format
//
//	name: fetch_then_add
//	description: "A local add sorts ahead of fetched users"
//	page_size: 6
//	directory:
//	  users:
//	    - { id: 2, name: Ervin Howell, email: Shanna@melissa.tv, company: { name: Deckow-Crist } }
//	flow:
//	  - op: hydrate
//	    expect: { outcome: fetched }
//	  - op: add
//	    args: { name: Ada, email: ada@x.io }
//	  - op: update
//	    args: { id: $last, organization: Engines }
//	  - op: view
//	assertions:
//	  - type: view
//	    names: [Ada, Ervin Howell]
//	  - type: trace_count
//	    op: add
//	    count: 1
//
// # Operations
//
//   - hydrate: fetch from the directory if the store is empty
//   - add, update, delete: validated user mutations
//   - search, sort, page, where: view parameters
//   - view: record the current page in the trace
//
// # Assertion Types
//
//   - trace_contains: an op appears with matching args (subset match)
//   - trace_order: ops appear in the given order
//   - trace_count: an op appears exactly N times
//   - view: the final page has the given names, ids, total_pages or empty state
//   - store_count: the store holds exactly N records
//
// # Deterministic Testing
//
// The store clock is a testutil.FakeClock starting at testutil.Epoch, so
// Local record ids and CreatedAt values repeat exactly across runs.
package harness
