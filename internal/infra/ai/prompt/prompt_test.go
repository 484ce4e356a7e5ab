package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinay9977/CodeCritic/internal/domain/analyses"
)

func file(path, content string) analyses.SourceFile {
	return analyses.SourceFile{Path: path, Content: content, Lines: strings.Count(content, "\n") + 1}
}

func TestBuildContext_LabelsAndFences(t *testing.T) {
	out := BuildContext([]analyses.SourceFile{
		file("main.py", "print('hi')"),
		file("utils.py", "def f():\n    pass"),
	}, "python")

	assert.Contains(t, out, "### File: main.py")
	assert.Contains(t, out, "### File: utils.py")
	assert.Contains(t, out, "```python")
	assert.Contains(t, out, "print('hi')")
}

func TestBuildContext_EmptyInput(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil, "python"))
}

func TestBuildContext_RespectsBudget(t *testing.T) {
	big := strings.Repeat("x = 1\n", 3000) // well over the budget on its own
	out := BuildContext([]analyses.SourceFile{
		file("a.py", big),
		file("b.py", big),
	}, "python")

	require.LessOrEqual(t, len(out), MaxContextChars()+len(truncationMarker))
	assert.Contains(t, out, truncationMarker)
	// second file must have been dropped entirely
	assert.NotContains(t, out, "### File: b.py")
}

func TestBuildContext_SkipsUselessRemainder(t *testing.T) {
	// first file fits but leaves less than the useful minimum for the second
	almost := strings.Repeat("y", maxContextChars-70)
	out := BuildContext([]analyses.SourceFile{
		file("first.py", almost),
		file("second.py", "print('late')"),
	}, "python")

	assert.Contains(t, out, "### File: first.py")
	assert.NotContains(t, out, "second.py")
	assert.NotContains(t, out, truncationMarker)
}

func TestBuildContext_PreservesOrder(t *testing.T) {
	out := BuildContext([]analyses.SourceFile{
		file("main.py", "a"),
		file("helper.py", "b"),
		file("model.py", "c"),
	}, "python")

	i1 := strings.Index(out, "main.py")
	i2 := strings.Index(out, "helper.py")
	i3 := strings.Index(out, "model.py")
	require.True(t, i1 >= 0 && i2 >= 0 && i3 >= 0)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
}

func TestGetAnalysisPrompt(t *testing.T) {
	p := GetAnalysisPrompt("### File: main.py\n```python\nx=1\n```", "python")

	assert.Contains(t, p, "Analyze the following python code")
	assert.Contains(t, p, `"overall_score"`)
	assert.Contains(t, p, "List max 10 most important issues")
}

func TestGetQuickScorePrompt_TruncatesSnippet(t *testing.T) {
	long := strings.Repeat("z", 2000)
	p := GetQuickScorePrompt(long, "go")

	assert.Contains(t, p, "Rate this go code quality")
	assert.NotContains(t, p, strings.Repeat("z", 501))
}
