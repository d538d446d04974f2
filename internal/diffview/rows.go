package diffview

type Side int

const (
	SideOld Side = iota
	SideNew
)

type RowKind int

const (
	RowContext RowKind = iota
	RowDelete
	RowAdd
	RowChange
	RowHunkHeader
	RowFileHeader
)

func (k RowKind) String() string {
	switch k {
	case RowDelete:
		return "delete"
	case RowAdd:
		return "add"
	case RowChange:
		return "change"
	case RowHunkHeader:
		return "hunk"
	case RowFileHeader:
		return "file"
	default:
		return "context"
	}
}

// DiffRow is one visual row of the split view. Change rows carry a deletion
// on the old side and the addition that replaced it on the new side.
type DiffRow struct {
	Kind      RowKind
	OldLine   *int
	NewLine   *int
	OldText   string
	NewText   string
	Path      string
	FileIndex int
	HunkID    int
}

func (r DiffRow) IsHeader() bool {
	return r.Kind == RowFileHeader || r.Kind == RowHunkHeader
}
