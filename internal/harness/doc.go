// Package harness provides conformance testing for the translator.
//
// A scenario is a script plus expectations about the MiniZinc files it
// produces. Every emitted file is also compared against a golden snapshot.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: soft_group
//	description: "What this scenario validates"
//	script: |
//	  (declare-fun x () Bool)
//	  (assert-soft x :weight 3 :id g)
//	  (check-sat)
//	config:
//	  soft_id_type: Int
//	  merge_assertions: false
//	expect:
//	  files: 1
//	  strategies: [satisfy]
//	  contains:
//	    - file: 1
//	      text: "constraint g = not(g_0)*3;"
//
// script_file may replace script; it is resolved relative to the scenario.
// expect.error names the error code the translation must fail with; when it
// is empty the translation must succeed.
//
// # Deterministic Testing
//
// Each scenario runs in a fresh temp directory with an in-memory ledger and a
// fixed run id ("scenario-<name>"), so repeated runs produce identical files
// and ledger rows.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/soft_group.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
