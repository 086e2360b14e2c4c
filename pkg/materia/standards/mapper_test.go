package standards

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/esglens/materia/pkg/materia/internalerr"
)

func testTable() *Table {
	return NewTable([]Mapping{
		{Code: "E-GHG", Name: "GHG Emissions", Category: "E", Topics: []string{"기후변화 대응", "탄소중립", "온실가스"}},
		{Code: "S-SAFETY", Name: "Employee Health & Safety", Category: "S", Topics: []string{"안전보건", "산업안전"}},
	})
}

func TestMapExactMatch(t *testing.T) {
	table := testTable()

	m, err := table.Map("탄소중립")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if m.Code != "E-GHG" {
		t.Errorf("code = %s, want E-GHG", m.Code)
	}
}

func TestMapCaseInsensitive(t *testing.T) {
	table := NewTable([]Mapping{
		{Code: "E-ENERGY", Topics: []string{"Energy Management"}},
	})

	m, err := table.Map("energy management")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if m.Code != "E-ENERGY" {
		t.Errorf("code = %s, want E-ENERGY", m.Code)
	}
}

func TestMapContainment(t *testing.T) {
	table := testTable()

	m, err := table.Map("사업장 안전보건 강화")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if m.Code != "S-SAFETY" {
		t.Errorf("code = %s, want S-SAFETY", m.Code)
	}
}

func TestMapExactWinsOverContainment(t *testing.T) {
	table := NewTable([]Mapping{
		{Code: "E-WATER", Topics: []string{"수자원 관리 체계"}},
		{Code: "E-GRID", Topics: []string{"수자원 관리"}},
	})

	m, err := table.Map("수자원 관리")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if m.Code != "E-GRID" {
		t.Errorf("code = %s, want the exact match E-GRID", m.Code)
	}
}

func TestMapUnmapped(t *testing.T) {
	table := testTable()

	_, err := table.Map("완전히 새로운 주제")
	if !errors.Is(err, internalerr.ErrUnmappedTopic) {
		t.Errorf("err = %v, want ErrUnmappedTopic", err)
	}
}

func TestMapEmptyName(t *testing.T) {
	table := testTable()

	_, err := table.Map("  ")
	if !errors.Is(err, internalerr.ErrUnmappedTopic) {
		t.Errorf("err = %v, want ErrUnmappedTopic", err)
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sasb.yaml")
	doc := `mappings:
  - code: E-GHG
    name: GHG Emissions
    category: E
    topics:
      - 기후변화 대응
      - 탄소중립
  - code: S-LABOR
    name: Labor Practices
    category: S
    topics:
      - 노사관계
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	codes := table.Codes()
	if len(codes) != 2 || codes[0] != "E-GHG" || codes[1] != "S-LABOR" {
		t.Errorf("codes = %v", codes)
	}
}
