package layers

import (
	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/logging"
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/sirupsen/logrus"
)

// Option configures BuildRows.
type Option func(*buildOptions)

type buildOptions struct {
	preserveUnknown bool
	logger          *logrus.Entry
}

// WithPreserveUnknown keeps records of unknown type as locked rows so they
// survive a save. By default they are dropped.
func WithPreserveUnknown() Option {
	return func(o *buildOptions) { o.preserveUnknown = true }
}

// WithLogger sets the logger that reports dropped records.
func WithLogger(l *logrus.Entry) Option {
	return func(o *buildOptions) { o.logger = l }
}

// Table is the ordered, editable row collection.
type Table struct {
	rows []Row
}

// BuildRows appends one row per overlay record, in list order.
func BuildRows(overlays []models.Overlay, opts ...Option) *Table {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewLogger("layers")
	}

	t := &Table{rows: make([]Row, 0, len(overlays))}
	for i, rec := range overlays {
		row, known := rowFromOverlay(rec)
		if !known && !o.preserveUnknown {
			o.logger.WithFields(logrus.Fields{
				"index": i,
				"type":  rec.Type(),
			}).Info("Dropping overlay of unknown type")
			continue
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) (Row, error) {
	if err := t.check(i); err != nil {
		return Row{}, err
	}
	return t.rows[i], nil
}

// Rows returns a copy of every row in order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Cells renders row i for the layer table.
func (t *Table) Cells(i int) ([6]string, error) {
	if err := t.check(i); err != nil {
		return [6]string{}, err
	}
	return t.rows[i].Cells(), nil
}

// Move relocates row from to position to, shifting the rows in between.
func (t *Table) Move(from, to int) error {
	if err := t.check(from); err != nil {
		return err
	}
	if err := t.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	row := t.rows[from]
	if from < to {
		copy(t.rows[from:to], t.rows[from+1:to+1])
	} else {
		copy(t.rows[to+1:from+1], t.rows[to:from])
	}
	t.rows[to] = row
	return nil
}

// MoveUp swaps row i with the one above it. The top row stays put.
func (t *Table) MoveUp(i int) error {
	if err := t.check(i); err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	return t.Move(i, i-1)
}

// MoveDown swaps row i with the one below it. The bottom row stays put.
func (t *Table) MoveDown(i int) error {
	if err := t.check(i); err != nil {
		return err
	}
	if i == len(t.rows)-1 {
		return nil
	}
	return t.Move(i, i+1)
}

// Delete removes row i, keeping the others in order.
func (t *Table) Delete(i int) error {
	if err := t.check(i); err != nil {
		return err
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

// SetVisible sets the checkbox of row i.
func (t *Table) SetVisible(i int, visible bool) error {
	if err := t.editable(i); err != nil {
		return err
	}
	t.rows[i].Visible = visible
	return nil
}

// ToggleVisible flips the checkbox of row i.
func (t *Table) ToggleVisible(i int) error {
	if err := t.editable(i); err != nil {
		return err
	}
	t.rows[i].Visible = !t.rows[i].Visible
	return nil
}

// SetColor sets the color of row i. The value is not validated.
func (t *Table) SetColor(i int, color string) error {
	if err := t.editable(i); err != nil {
		return err
	}
	t.rows[i].Color = color
	return nil
}

// SetText sets a free-text field. The value is passed through as typed,
// so a non-numeric sym_size reaches the renderer unchanged.
func (t *Table) SetText(i int, field Field, value string) error {
	if err := t.editable(i); err != nil {
		return err
	}
	row := &t.rows[i]
	if !hasField(row.TextFields(), field) {
		return errors.InvalidRow(i, string(row.Type)+" rows have no text field "+string(field))
	}

	switch field {
	case FieldDataFile:
		row.DataFile = value
	case FieldDataCol:
		row.DataCol = value
	case FieldDataRef:
		row.DataRef = value
	case FieldSymSize:
		row.SymSize = value
	case FieldText:
		row.Text = value
	}
	return nil
}

// Select sets a dropdown field. The value must be one of Options(field).
func (t *Table) Select(i int, field Field, value string) error {
	if err := t.editable(i); err != nil {
		return err
	}
	row := &t.rows[i]
	if !hasField(row.SelectFields(), field) {
		return errors.InvalidRow(i, string(row.Type)+" rows have no option "+string(field))
	}

	switch field {
	case FieldCoordSys:
		v := models.CoordSys(value)
		if !v.Valid() {
			return errors.InvalidRow(i, "unknown coordinate system "+value)
		}
		row.CoordSys = v
	case FieldSymType:
		v := models.SymbolType(value)
		if !v.Valid() {
			return errors.InvalidRow(i, "unknown symbol type "+value)
		}
		row.SymType = v
	case FieldDataType:
		v := models.DataType(value)
		if !v.Valid() {
			return errors.InvalidRow(i, "unknown data type "+value)
		}
		row.DataType = v
	}
	return nil
}

// Reconcile reads the rows top to bottom and returns a fresh overlay list.
func (t *Table) Reconcile() []models.Overlay {
	out := make([]models.Overlay, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, t.rows[i].overlay())
	}
	return out
}

func (t *Table) check(i int) error {
	if i < 0 || i >= len(t.rows) {
		return errors.InvalidRow(i, "out of range")
	}
	return nil
}

func (t *Table) editable(i int) error {
	if err := t.check(i); err != nil {
		return err
	}
	if t.rows[i].Locked {
		return errors.InvalidRow(i, "overlay type "+string(t.rows[i].Type)+" cannot be edited")
	}
	return nil
}

func hasField(fields []Field, f Field) bool {
	for _, candidate := range fields {
		if candidate == f {
			return true
		}
	}
	return false
}
