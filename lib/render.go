package lib

import (
	"fmt"
	"io"
	"text/template"
)

var tableTemplate = `{{range .Rows}}{{.Address}} |{{range .Cells}} {{pad .Label}} |{{end}}
{{blank .Address}} |{{range .Cells}} {{pad .Content}} |{{end}}
{{end}}{{range .Pointers}}{{.}}
{{end}}`

type RenderOptions struct {
	// RawBits shows every byte as a bit string instead of one formatted value
	// per slot.
	RawBits bool
}

type tableViewModel struct {
	Rows     []rowViewModel
	Pointers []string
}

type rowViewModel struct {
	Address string
	Cells   []cellViewModel
}

type cellViewModel struct {
	Label   string
	Content string
}

// RenderTable writes the arena as a grid of rows, one column per byte, with
// pointer targets listed underneath.
func RenderTable(w io.Writer, mem *Memory, opts RenderOptions) error {
	vm := newTableViewModel(mem, opts)

	width := 1
	for _, row := range vm.Rows {
		for _, c := range row.Cells {
			width = maxInt(width, len(c.Label), len(c.Content))
		}
	}

	funcs := template.FuncMap{
		"pad": func(s string) string {
			return fmt.Sprintf("%-*s", width, s)
		},
		"blank": func(s string) string {
			return fmt.Sprintf("%*s", len(s), "")
		},
	}

	tmpl, err := template.New("memory").Funcs(funcs).Parse(tableTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, vm)
}

func newTableViewModel(mem *Memory, opts RenderOptions) tableViewModel {
	cfg := mem.Config()
	cells := make([]cellViewModel, mem.Capacity()+1)
	cells[0] = cellViewModel{Label: "NULL"}

	vm := tableViewModel{}
	for _, slot := range mem.Slots() {
		tv, _ := mem.GetTypedValue(slot.Identifier)
		bytes := mem.Bytes(slot)

		contents := make([]string, len(bytes))
		label := fmt.Sprintf("%s %s", slot.Type, slot.Identifier)
		if opts.RawBits {
			label = fmt.Sprintf("%s = %s", label, FormatValue(tv))
			contents = Bits(bytes)
		} else {
			contents[0] = FormatValue(tv)
			for i := 1; i < len(contents); i++ {
				contents[i] = "..."
			}
		}

		for i, content := range contents {
			cells[slot.Address+i].Content = content
		}
		cells[slot.Address].Label = label

		if slot.Type.IsPointer() {
			vm.Pointers = append(vm.Pointers, describePointer(mem, slot, tv))
		}
	}

	for start := 0; start < len(cells); start += cfg.BytesPerRow {
		end := minInt(start+cfg.BytesPerRow, len(cells))
		row := rowViewModel{
			Address: fmt.Sprintf("0x%03x", start),
			Cells:   make([]cellViewModel, cfg.BytesPerRow),
		}
		copy(row.Cells, cells[start:end])
		vm.Rows = append(vm.Rows, row)
	}
	return vm
}

func describePointer(mem *Memory, slot Slot, tv TypedValue) string {
	if tv.IsNull() {
		return fmt.Sprintf("%s -> NULL", slot.Identifier)
	}
	target, ok := mem.SlotAt(tv.Value)
	if !ok {
		return fmt.Sprintf("%s -> 0x%02x (no variable)", slot.Identifier, tv.Value)
	}
	return fmt.Sprintf("%s -> %s", slot.Identifier, target.Identifier)
}

func maxInt(first int, rest ...int) int {
	m := first
	for _, v := range rest {
		if v > m {
			m = v
		}
	}
	return m
}

func minInt(a int, b int) int {
	if a < b {
		return a
	}
	return b
}
