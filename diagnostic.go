// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package configdoctor

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"rivaas.dev/configdoctor/codec"
)

// linePatterns extract a line number from parser messages that do not expose
// a structured position.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bline\s+(\d+)`),
	regexp.MustCompile(`\[(\d+):\d+\]`),
	regexp.MustCompile(`:(\d+):`),
}

// LocateLine returns a best-effort 1-based line number for a decode error,
// or 0 when no line can be determined. It consults, in order, the decoder's
// own [codec.Locator], line patterns in the error message, and a heuristic
// scan of data. Candidates outside the document are discarded.
func LocateLine(dec codec.Decoder, err error, data []byte) int {
	if err == nil {
		return 0
	}
	total := countLines(data)

	if locator, ok := dec.(codec.Locator); ok {
		if line, ok := locator.Locate(err, data); ok && line > 0 && line <= total {
			return line
		}
	}

	msg := err.Error()
	for _, re := range linePatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		if line, convErr := strconv.Atoi(m[1]); convErr == nil && line > 0 && line <= total {
			return line
		}
	}

	return suspiciousLine(data)
}

// suspiciousLine returns the first line that ends with a colon or holds an
// unquoted '='. Such lines are the usual culprits when a file written in one
// format is read as another.
func suspiciousLine(data []byte) int {
	for i, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ":") || hasUnquotedEquals(line) {
			return i + 1
		}
	}
	return 0
}

func hasUnquotedEquals(line string) bool {
	var quote rune
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '=':
			return true
		}
	}
	return false
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// LineContext renders the lines around line with 1-based line numbers,
// marking line itself with '>'. It returns an empty string when line is
// outside data.
//
// Example output for line 3 and radius 1:
//
//	  2 | "name": "api",
//	> 3 | "port": 80 80,
//	  4 | "debug": true
func LineContext(data []byte, line, radius int) string {
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if line < 1 || line > len(lines) || len(data) == 0 {
		return ""
	}
	if radius < 0 {
		radius = 0
	}

	first := max(1, line-radius)
	last := min(len(lines), line+radius)
	width := len(strconv.Itoa(last))

	var b strings.Builder
	for n := first; n <= last; n++ {
		marker := " "
		if n == line {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %*d | %s\n", marker, width, n, strings.TrimRight(lines[n-1], "\r"))
	}
	return b.String()
}
