package blockedit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitid/internal/blockedit"
)

const (
	testBlockKeyConstant  = "work"
	testBlockBodyConstant = "Host github-work\n    HostName github.com"
)

var testMarkerSet = blockedit.MarkerSet{StartPrefix: "# Git-ID", EndPrefix: "# End Git-ID"}

func renderedWorkBlock(body string) string {
	return "# Git-ID - work\n" + body + "\n# End Git-ID - work"
}

func TestUpsertBlock(testInstance *testing.T) {
	testCases := []struct {
		name             string
		contents         string
		expectedContents string
	}{
		{
			name:             "empty_file",
			contents:         "",
			expectedContents: renderedWorkBlock(testBlockBodyConstant) + "\n",
		},
		{
			name:             "appends_after_blank_line",
			contents:         "Host example\n    User me\n\n\n",
			expectedContents: "Host example\n    User me\n\n" + renderedWorkBlock(testBlockBodyConstant) + "\n",
		},
		{
			name:             "replaces_existing_block",
			contents:         "Host a\n\n" + renderedWorkBlock("Host old") + "\n\nHost b\n",
			expectedContents: "Host a\n\nHost b\n\n" + renderedWorkBlock(testBlockBodyConstant) + "\n",
		},
		{
			name:             "removes_duplicate_blocks",
			contents:         renderedWorkBlock("Host one") + "\n" + renderedWorkBlock("Host two") + "\n",
			expectedContents: renderedWorkBlock(testBlockBodyConstant) + "\n",
		},
		{
			name:             "ignores_blocks_of_prefix_sharing_keys",
			contents:         "# Git-ID - work2\nHost github-work2\n# End Git-ID - work2\n",
			expectedContents: "# Git-ID - work2\nHost github-work2\n# End Git-ID - work2\n\n" + renderedWorkBlock(testBlockBodyConstant) + "\n",
		},
		{
			name:             "keeps_unterminated_start_marker",
			contents:         "Host a\n# Git-ID - work\nHost github-work\n",
			expectedContents: "Host a\n# Git-ID - work\nHost github-work\n\n" + renderedWorkBlock(testBlockBodyConstant) + "\n",
		},
	}

	editor := blockedit.NewEditor(testMarkerSet)
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			updatedContents := editor.UpsertBlock(testCase.contents, testBlockKeyConstant, testBlockBodyConstant)
			require.Equal(testInstance, testCase.expectedContents, updatedContents)
			require.Equal(testInstance, updatedContents, editor.UpsertBlock(updatedContents, testBlockKeyConstant, testBlockBodyConstant))
			require.Equal(testInstance, 1, strings.Count(updatedContents, "# End Git-ID - work\n"))
		})
	}
}

func TestRemoveBlock(testInstance *testing.T) {
	testCases := []struct {
		name             string
		contents         string
		expectedContents string
	}{
		{
			name:             "only_block",
			contents:         renderedWorkBlock(testBlockBodyConstant) + "\n",
			expectedContents: "",
		},
		{
			name:             "block_between_entries",
			contents:         "Host a\n\n" + renderedWorkBlock(testBlockBodyConstant) + "\nHost b\n",
			expectedContents: "Host a\n\nHost b\n",
		},
		{
			name:             "missing_block_normalizes_trailing_whitespace",
			contents:         "Host a\n\n\n",
			expectedContents: "Host a\n",
		},
		{
			name:             "unterminated_start_marker_is_left_alone",
			contents:         "Host a\n# Git-ID - work\nHost github-work\n",
			expectedContents: "Host a\n# Git-ID - work\nHost github-work\n",
		},
		{
			name:             "crlf_line_endings",
			contents:         "Host a\r\n# Git-ID - work\r\nHost github-work\r\n# End Git-ID - work\r\n",
			expectedContents: "Host a\n",
		},
	}

	editor := blockedit.NewEditor(testMarkerSet)
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedContents, editor.RemoveBlock(testCase.contents, testBlockKeyConstant))
		})
	}
}

func TestRemoveUndoesUpsert(testInstance *testing.T) {
	editor := blockedit.NewEditor(testMarkerSet)
	for _, originalContents := range []string{"", "Host a\n", "Host a\n    User me\n\n", "# Git-ID - personal\nHost p\n# End Git-ID - personal\n"} {
		roundTripped := editor.RemoveBlock(editor.UpsertBlock(originalContents, testBlockKeyConstant, testBlockBodyConstant), testBlockKeyConstant)
		expectedContents := strings.TrimRight(originalContents, " \t\r\n")
		if len(expectedContents) > 0 {
			expectedContents += "\n"
		}
		require.Equal(testInstance, expectedContents, roundTripped)
	}
}

func TestUpsertAfterDanglingStartKeepsUserContent(testInstance *testing.T) {
	editor := blockedit.NewEditor(testMarkerSet)
	danglingContents := "# Git-ID - work\nuser content\n"

	firstPass := editor.UpsertBlock(danglingContents, testBlockKeyConstant, "Host first")
	secondPass := editor.UpsertBlock(firstPass, testBlockKeyConstant, "Host second")

	require.Equal(testInstance, "# Git-ID - work\nuser content\n\n"+renderedWorkBlock("Host second")+"\n", secondPass)
	require.True(testInstance, editor.HasBlock(secondPass, testBlockKeyConstant))
	require.False(testInstance, editor.HasBlock(danglingContents, testBlockKeyConstant))
}
