// Package harness runs eager-load conformance scenarios.
//
// A scenario builds a database, batch-loads one entity kind and checks what
// came back: attribute values, names that must not resolve, relation sizes
// and the number of attribute queries issued.
//
// # Scenario Format
//
//	name: product_attributes
//	description: "Attributes resolve per entity; misses fall through"
//	definitions:
//	  - entities.cue
//	setup:
//	  - CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT)
//	rows:
//	  - table: attributes
//	    values: { attributeID: 7, name: color, type: string }
//	  - table: string_attributes
//	    values: { objectID: 42, objectType: products, attributeID: 7, value: red }
//	load:
//	  entity: Product
//	  keys: [42, 43]
//	expect:
//	  - key: 42
//	    attributes: { color: red }
//	  - key: 43
//	    missing: [color]
//	queries: 1
//
// Definition paths are relative to the scenario file. Setup statements and
// rows run before the load and are not counted.
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite database with a fixed
// load id (scenario.load_id or "test-load-default"), so snapshots are
// byte-identical across runs and can be compared with golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/product_attributes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
