package diff

import (
	"testing"

	"github.com/sdejongh/mergetree/pkg/models"
)

func snap(hash string, size int64, binary bool) *models.FileSnapshot {
	return models.NewFileSnapshot("file.txt", hash, size, binary, nil)
}

// TestClassify covers the full three-way decision table
func TestClassify(t *testing.T) {
	a := snap("aaa", 1, false)
	b := snap("bbb", 2, false)
	c := snap("ccc", 3, false)

	tests := []struct {
		name     string
		base     *models.FileSnapshot
		local    *models.FileSnapshot
		remote   *models.FileSnapshot
		class    pathClass
		strategy models.Strategy
		kind     models.ConflictKind
	}{
		{
			name: "AllIdentical",
			base: a, local: a, remote: a,
			class: classUnchanged,
		},
		{
			name: "LocalOnlyChanged",
			base: a, local: b, remote: a,
			class: classAutoMerge, strategy: models.StrategyUseLocal,
		},
		{
			name: "RemoteOnlyChanged",
			base: a, local: a, remote: b,
			class: classAutoMerge, strategy: models.StrategyUseRemote,
		},
		{
			name: "ConvergentEdit",
			base: a, local: b, remote: b,
			class: classAutoMerge, strategy: models.StrategyUseLocal,
		},
		{
			name: "DivergentEdit",
			base: a, local: b, remote: c,
			class: classConflict, kind: models.KindContent,
		},
		{
			name: "LocalAddition",
			base: nil, local: a, remote: nil,
			class: classAutoMerge, strategy: models.StrategyUseLocal,
		},
		{
			name: "RemoteAddition",
			base: nil, local: nil, remote: a,
			class: classAutoMerge, strategy: models.StrategyUseRemote,
		},
		{
			name: "ConvergentAdd",
			base: nil, local: a, remote: a,
			class: classAutoMerge, strategy: models.StrategyUseLocal,
		},
		{
			name: "DivergentAdd",
			base: nil, local: a, remote: b,
			class: classConflict, kind: models.KindAddAdd,
		},
		{
			name: "BothDeleted",
			base: a, local: nil, remote: nil,
			class: classAutoMerge, strategy: models.StrategyUseLocal,
		},
		{
			name: "LocalDeletedRemoteUntouched",
			base: a, local: nil, remote: a,
			class: classAutoMerge, strategy: models.StrategyUseLocal,
		},
		{
			name: "LocalDeletedRemoteModified",
			base: a, local: nil, remote: b,
			class: classConflict, kind: models.KindDeletion,
		},
		{
			name: "RemoteDeletedLocalUntouched",
			base: a, local: a, remote: nil,
			class: classAutoMerge, strategy: models.StrategyUseBase,
		},
		{
			name: "RemoteDeletedLocalModified",
			base: a, local: b, remote: nil,
			class: classConflict, kind: models.KindDeletion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.base, tt.local, tt.remote)

			if got.class != tt.class {
				t.Fatalf("class = %d, want %d", got.class, tt.class)
			}
			if got.class == classAutoMerge && got.strategy != tt.strategy {
				t.Errorf("strategy = %s, want %s", got.strategy, tt.strategy)
			}
			if got.class == classConflict && got.kind != tt.kind {
				t.Errorf("kind = %s, want %s", got.kind, tt.kind)
			}
			if got.class != classAutoMerge && got.strategy != models.StrategyManual {
				t.Errorf("non-auto classification must not carry a strategy, got %s", got.strategy)
			}
		})
	}
}

// TestClassifyCompleteness checks that every presence combination with at
// least one side present lands in a definite bucket
func TestClassifyCompleteness(t *testing.T) {
	a := snap("aaa", 1, false)
	b := snap("bbb", 2, false)

	options := []*models.FileSnapshot{nil, a, b}

	for _, base := range options {
		for _, local := range options {
			for _, remote := range options {
				if base == nil && local == nil && remote == nil {
					continue
				}

				got := classify(base, local, remote)

				switch got.class {
				case classUnchanged, classAutoMerge, classConflict:
				default:
					t.Errorf("classify(%v,%v,%v) produced unknown class %d", base, local, remote, got.class)
				}

				if got.class == classAutoMerge && got.strategy == models.StrategyManual {
					t.Errorf("auto-merge classification without strategy for (%v,%v,%v)", base, local, remote)
				}
			}
		}
	}
}

// TestClassifyBinaryFlag checks binary propagation from any side
func TestClassifyBinaryFlag(t *testing.T) {
	text := snap("aaa", 1, false)
	bin := snap("bbb", 2, true)

	got := classify(text, bin, snap("ccc", 3, false))
	if !got.isBinary {
		t.Error("isBinary should be true when any side is binary")
	}

	got = classify(text, text, text)
	if got.isBinary {
		t.Error("isBinary should be false for all-text sides")
	}
}

// TestClassifyBinaryIdenticalAdd checks that hash-identical binary adds
// stay auto-mergeable; equality is hash-based regardless of content type
func TestClassifyBinaryIdenticalAdd(t *testing.T) {
	bin := snap("samehash", 4, true)

	got := classify(nil, bin, snap("samehash", 4, true))
	if got.class != classAutoMerge {
		t.Fatalf("identical binary add should auto-merge, got class %d", got.class)
	}
	if got.strategy != models.StrategyUseLocal {
		t.Errorf("strategy = %s, want use-local", got.strategy)
	}
	if !got.isBinary {
		t.Error("isBinary should be true")
	}
}
