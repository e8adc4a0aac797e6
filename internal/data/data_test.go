package data_test

import (
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/cubicletools/ctc/internal/data"
	"github.com/cubicletools/ctc/internal/fsys"
	"github.com/cubicletools/ctc/pkg/errors"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	f := fsys.New(fstest.MapFS{
		"procs.yaml": &fstest.MapFile{Data: []byte("count: 3\nnames:\n  - a\n  - b\n")},
		"procs.json": &fstest.MapFile{Data: []byte(`{"count": 3}`)},
	})

	doc, err := data.Load(f, "procs.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := map[string]any{
		"count": 3,
		"names": []any{"a", "b"},
	}

	if !reflect.DeepEqual(doc, want) {
		t.Errorf("got %#v, want %#v", doc, want)
	}
}

func TestLoadTopLevelList(t *testing.T) {
	t.Parallel()

	f := fsys.New(fstest.MapFS{
		"bad.yaml": &fstest.MapFile{Data: []byte("- a\n- b\n")},
	})

	_, err := data.Load(f, "bad.yaml")
	if !errors.Is(err, errors.ErrDataFormat) {
		t.Fatalf("got %v, want ErrDataFormat", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	t.Parallel()

	f := fsys.New(fstest.MapFS{
		"empty.yaml": &fstest.MapFile{Data: []byte("")},
	})

	doc, err := data.Load(f, "empty.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(doc) != 0 {
		t.Errorf("got %#v, want empty map", doc)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	t.Parallel()

	f := fsys.New(fstest.MapFS{
		"notes.txt": &fstest.MapFile{Data: []byte("hi")},
	})

	_, err := data.Load(f, "notes.txt")
	if !errors.Is(err, errors.ErrUnknownFormat) {
		t.Fatalf("got %v, want ErrUnknownFormat", err)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		dst  map[string]any
		src  map[string]any
		want map[string]any
	}{
		"mapsMergeRecursively": {
			dst:  map[string]any{"a": map[string]any{"x": 1}},
			src:  map[string]any{"a": map[string]any{"y": 2}},
			want: map[string]any{"a": map[string]any{"x": 1, "y": 2}},
		},
		"scalarsReplace": {
			dst:  map[string]any{"n": 1},
			src:  map[string]any{"n": 2},
			want: map[string]any{"n": 2},
		},
		"listsReplace": {
			dst:  map[string]any{"l": []any{1, 2, 3}},
			src:  map[string]any{"l": []any{9}},
			want: map[string]any{"l": []any{9}},
		},
		"nullKeepsExisting": {
			dst:  map[string]any{"a": map[string]any{"x": 1}},
			src:  map[string]any{"a": nil},
			want: map[string]any{"a": map[string]any{"x": 1}},
		},
		"newKeysAdded": {
			dst:  map[string]any{"a": 1},
			src:  map[string]any{"b": 2},
			want: map[string]any{"a": 1, "b": 2},
		},
		"scalarReplacedByMap": {
			dst:  map[string]any{"a": 1},
			src:  map[string]any{"a": map[string]any{"x": 1}},
			want: map[string]any{"a": map[string]any{"x": 1}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := data.Merge(tc.dst, tc.src)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestApplySet(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"srv": map[string]any{"host": "a"}}

	if err := data.ApplySet(doc, "srv.port=8080"); err != nil {
		t.Fatalf("ApplySet: %v", err)
	}

	if err := data.ApplySet(doc, "srv.host=b"); err != nil {
		t.Fatalf("ApplySet: %v", err)
	}

	want := map[string]any{"srv": map[string]any{"host": "b", "port": 8080}}

	if !reflect.DeepEqual(doc, want) {
		t.Errorf("got %#v, want %#v", doc, want)
	}
}

func TestApplySetMalformed(t *testing.T) {
	t.Parallel()

	err := data.ApplySet(map[string]any{}, "noequals")
	if !errors.Is(err, errors.ErrInvalidPath) {
		t.Fatalf("got %v, want ErrInvalidPath", err)
	}
}
