package variables

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// frontMatterValue reads the YAML block delimited by "---" lines at the top of path
// and returns the value at the dotted key.
func frontMatterValue(fs afero.Fs, path, key string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	block, ok := extractFrontMatter(data)
	if !ok {
		return "", fmt.Errorf("%s has no front matter", path)
	}

	var root map[string]interface{}
	if err := yaml.Unmarshal(block, &root); err != nil {
		return "", fmt.Errorf("parse front matter: %w", err)
	}

	var current interface{} = root
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("front matter key %s not found", key)
		}
		if current, ok = m[part]; !ok {
			return "", fmt.Errorf("front matter key %s not found", key)
		}
	}

	switch v := current.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case map[string]interface{}, []interface{}:
		out, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(out), "\n"), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func extractFrontMatter(data []byte) ([]byte, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "---" {
		return nil, false
	}
	var block bytes.Buffer
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "---" {
			return block.Bytes(), true
		}
		block.WriteString(line)
		block.WriteByte('\n')
	}
	return nil, false
}
