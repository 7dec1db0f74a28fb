package models

import (
	"github.com/pkg/errors"
)

// BootContext is the (system table, boot services, image handle) triple handed
// over by the firmware at entry. It is immutable once built.
type BootContext struct {
	image Handle
	table *SystemTable
}

func NewBootContext(image Handle, table *SystemTable) (*BootContext, error) {
	if table == nil {
		return nil, errors.WithStack(InvalidParameter)
	}
	if table.BootServices == nil {
		return nil, errors.Wrap(InvalidParameter, "system table has no boot services")
	}
	return &BootContext{image: image, table: table}, nil
}

func (b *BootContext) Image() Handle              { return b.image }
func (b *BootContext) SystemTable() *SystemTable  { return b.table }
func (b *BootContext) BootServices() BootServices { return b.table.BootServices }
