package judge

import (
	"strconv"
	"strings"
)

const (
	ProblemTypeTwoSum = "two_sum"
	ProblemTypeRaw    = "raw"
)

// Args holds the typed arguments decoded from a test case input. Raw always
// carries the original text so executors that feed stdin directly are not
// tied to a particular problem shape.
type Args struct {
	Nums   []int64
	Target int64
	Raw    string
}

// InputParser converts a raw test case input into Args. Parsers must not
// fail: malformed input degrades to zero-value arguments so judging never
// aborts on a bad test case, it just produces a wrong answer.
type InputParser func(input string) Args

var inputParsers = map[string]InputParser{
	ProblemTypeTwoSum: parseTwoSum,
	ProblemTypeRaw:    parseRaw,
}

// RegisterInputParser adds a parser for a new problem shape. Existing
// registrations are replaced.
func RegisterInputParser(problemType string, p InputParser) {
	inputParsers[problemType] = p
}

// ParseInput dispatches on the problem type, falling back to the raw
// passthrough parser for unknown types.
func ParseInput(problemType, input string) Args {
	if p, ok := inputParsers[problemType]; ok {
		return p(input)
	}
	return parseRaw(input)
}

func parseRaw(input string) Args {
	return Args{Nums: []int64{}, Target: 0, Raw: input}
}

// parseTwoSum expects a bracketed, comma-separated integer list on the first
// line and a single integer target on the second. Anything malformed (empty
// input, a single line, non-numeric tokens) returns empty nums and target 0.
func parseTwoSum(input string) Args {
	out := Args{Nums: []int64{}, Target: 0, Raw: input}

	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return out
	}

	numsLine := strings.TrimSpace(lines[0])
	numsLine = strings.TrimPrefix(numsLine, "[")
	numsLine = strings.TrimSuffix(numsLine, "]")

	var nums []int64
	if strings.TrimSpace(numsLine) != "" {
		for _, token := range strings.Split(numsLine, ",") {
			n, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
			if err != nil {
				return out
			}
			nums = append(nums, n)
		}
	}

	target, err := strconv.ParseInt(strings.TrimSpace(lines[1]), 10, 64)
	if err != nil {
		return out
	}

	if nums == nil {
		nums = []int64{}
	}
	out.Nums = nums
	out.Target = target
	return out
}
