package dict

import (
	"context"
	"testing"
)

var (
	benchLabel   string
	benchOptions []Option
)

// One demand list page renders five labels per row.
func BenchmarkLabelOrCode_DemandRow(b *testing.B) {
	if err := RegisterResolver(NewStaticResolver(ConsoleDictionaries())); err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ReportAllocs()
	for b.Loop() {
		benchLabel = LabelOrCode(ctx, CodeIssuePriority, "URGENT")
		benchLabel = LabelOrCode(ctx, CodeIssueStatus, "IN_ACCEPTANCE")
		benchLabel = LabelOrCode(ctx, CodeIssueStage, "SCHEDULED")
		benchLabel = LabelOrCode(ctx, CodeIssueInputSource, "COMPETITOR")
		benchLabel = LabelOrCode(ctx, CodeIssueType, "OPTIMIZATION")
	}
}

func BenchmarkStaticResolver_KeywordSearch(b *testing.B) {
	r := NewStaticResolver(ConsoleDictionaries())
	ctx := context.Background()
	b.ReportAllocs()
	for b.Loop() {
		benchOptions, _ = r.ListOptions(ctx, CodeIssueStatus, "中", 0)
	}
}
