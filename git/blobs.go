package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// blobs resolves object specs such as ":path" or "HEAD:path" with a single
// git cat-file --batch process. Missing objects are absent from the result.
func (r *Runner) blobs(ctx context.Context, specs []string) (map[string]string, error) {
	result := make(map[string]string, len(specs))
	if len(specs) == 0 {
		return result, nil
	}

	var input strings.Builder
	for _, spec := range specs {
		input.WriteString(spec)
		input.WriteByte('\n')
	}
	output, err := r.run(ctx, strings.NewReader(input.String()), "cat-file", "--batch")
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bytes.NewReader(output))
	for _, spec := range specs {
		header, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("cat-file %s: %w", spec, err)
		}
		header = strings.TrimSuffix(header, "\n")
		if strings.HasSuffix(header, " missing") || strings.HasSuffix(header, " ambiguous") {
			continue
		}

		// <oid> SP <type> SP <size> LF <contents> LF
		fields := strings.Fields(header)
		if len(fields) != 3 {
			return nil, fmt.Errorf("cat-file %s: unexpected header %q", spec, header)
		}
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("cat-file %s: %w", spec, err)
		}
		content := make([]byte, size+1)
		if _, err := io.ReadFull(br, content); err != nil {
			return nil, fmt.Errorf("cat-file %s: %w", spec, err)
		}
		result[spec] = string(content[:size])
	}
	return result, nil
}
