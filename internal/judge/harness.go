package judge

import (
	"encoding/json"
	"fmt"
)

// jsDriver is appended below the user source. It resolves the entry point by
// convention (main, then solution, then solve, then twoSum), invokes it with
// the parsed arguments, and prefers captured console output over the return
// value. A run that prints nothing and returns nothing reports a literal
// message instead of an empty string so it can never vacuously pass against
// an empty expectation.
const jsDriver = `
;(function () {
    var __args = %s;
    var __printed = [];
    var __log = console.log;
    console.log = function () {
        var parts = [];
        for (var i = 0; i < arguments.length; i++) {
            var a = arguments[i];
            parts.push(typeof a === "object" && a !== null ? JSON.stringify(a) : String(a));
        }
        __printed.push(parts.join(" "));
    };

    var entry = null;
    if (typeof main === "function") { entry = main; }
    else if (typeof solution === "function") { entry = solution; }
    else if (typeof solve === "function") { entry = solve; }
    else if (typeof twoSum === "function") { entry = twoSum; }

    if (entry === null) {
        console.log = __log;
        process.stderr.write("no entry point found: expected main, solution, solve or twoSum");
        process.exit(1);
    }

    var ret;
    try {
        ret = entry(__args.nums, __args.target);
    } catch (err) {
        console.log = __log;
        process.stderr.write(String(err && err.message ? err.message : err));
        process.exit(1);
    }

    console.log = __log;
    if (__printed.length > 0) {
        process.stdout.write(__printed.join("\n"));
    } else if (ret !== undefined && ret !== null) {
        process.stdout.write(typeof ret === "object" ? JSON.stringify(ret) : String(ret));
    } else {
        process.stdout.write("executed successfully but produced no output");
    }
})();
`

type harnessArgs struct {
	Nums   []int64 `json:"nums"`
	Target int64   `json:"target"`
	Raw    string  `json:"raw"`
}

// buildJavaScriptHarness combines the user source with the driver. The user
// code stays at top level so its function declarations are visible to the
// driver's typeof probes.
func buildJavaScriptHarness(code string, args Args) (string, error) {
	nums := args.Nums
	if nums == nil {
		nums = []int64{}
	}

	encoded, err := json.Marshal(harnessArgs{Nums: nums, Target: args.Target, Raw: args.Raw})
	if err != nil {
		return "", fmt.Errorf("failed to encode harness arguments: %w", err)
	}

	return code + fmt.Sprintf(jsDriver, string(encoded)), nil
}
