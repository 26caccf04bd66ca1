package docs

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// listed returns the topics of the "* topic: description" lines of the index.
func listed(t *testing.T) []string {
	t.Helper()
	f, err := os.Open(index + ".md")
	if err != nil {
		t.Fatalf("cannot open the index: %v", err)
	}
	defer f.Close()

	line := regexp.MustCompile(`^\*\s+([a-z]+):`)
	var topics []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := line.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return topics
}

func TestIndex(t *testing.T) {
	topics := listed(t)
	for _, topic := range topics {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("GetTopic(%q) error = %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		if !slices.Contains(topics, topic) {
			t.Errorf("topic %q is missing from %s.md", topic, index)
		}
	}
	if len(all) != len(topics) {
		t.Errorf("GetAllTopics() = %q, the index lists %q", all, topics)
	}
}

func TestGetTopics(t *testing.T) {
	one, err := GetTopics("entries", "alerts")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(one, "# Entries") || !strings.Contains(one, "# Alerts") {
		t.Errorf("GetTopics(entries, alerts) misses a topic:\n%s", one)
	}

	every, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(every, "cfo documentation") {
		t.Error(`GetTopic("*") includes the index`)
	}
	if !strings.Contains(every, "# Web dashboard") {
		t.Error(`GetTopic("*") misses the web topic`)
	}

	if _, err := GetTopic("nope"); err == nil {
		t.Error(`GetTopic("nope") succeeded`)
	}
}

// A scenario is a "bash setup" block followed by "bash check" blocks, run in
// a fresh directory with cfo in the PATH.
const (
	setupBlock = "bash setup"
	checkBlock = "bash check"
)

type block struct {
	kind   string
	script string
	line   int
}

// blocks returns the scenario blocks of a markdown file.
func blocks(t *testing.T, file string) []block {
	t.Helper()
	source, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var res []block
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		code, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || code.Info == nil {
			return ast.WalkContinue, nil
		}
		info := string(code.Info.Segment.Value(source))
		if info != setupBlock && info != checkBlock {
			return ast.WalkContinue, nil
		}
		var script bytes.Buffer
		for i := 0; i < code.Lines().Len(); i++ {
			seg := code.Lines().At(i)
			script.Write(seg.Value(source))
		}
		res = append(res, block{
			kind:   info,
			script: script.String(),
			line:   bytes.Count(source[:code.Info.Segment.Start], []byte("\n")) + 1,
		})
		return ast.WalkContinue, nil
	})
	return res
}

func TestScenarios(t *testing.T) {
	if testing.Short() {
		t.Skip("builds cfo")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, filepath.Join("..", "README.md"))

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "cfo"), "../cfo/")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("cannot build cfo: %v\n%s", err, out)
	}
	// the scenarios never reach the price API, and keep their logs quiet.
	env := append(os.Environ(),
		"PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"),
		"CFO_LOG_LEVEL=error",
		"CFO_PRICES_BASE_URL=http://127.0.0.1:1",
	)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			dir := t.TempDir()
			for _, b := range blocks(t, file) {
				if b.kind == setupBlock {
					dir = t.TempDir()
				}
				cmd := exec.Command("bash", "-c", "set -e\n"+b.script)
				cmd.Dir = dir
				cmd.Env = env
				out, err := cmd.CombinedOutput()
				if err == nil {
					continue
				}
				if b.kind == setupBlock {
					t.Fatalf("%s:%d: setup failed: %v\n%s", file, b.line, err, out)
				}
				t.Errorf("%s:%d: check failed: %v\n%s", file, b.line, err, out)
			}
		})
	}
}
