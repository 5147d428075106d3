package testutil

import "github.com/malaterre/GEMS-PARM-01/internal/variant"

// AcquisitionGroups is a record layout that exercises every group kind with
// a check: a vector repeating unk4, zero padding, a five-field text record
// and an alignment pad. It ends at offset 548.
func AcquisitionGroups() []variant.GroupSpec {
	return []variant.GroupSpec{
		variant.Vector("unk7", 4, variant.Check{Kind: variant.CheckEquals, Field: "unk4"}),
		variant.Padding("reserved", 400),
		variant.Text("acquisition",
			variant.TextField{Name: "serial", Width: 6},
			variant.TextField{Name: "date", Width: 8},
			variant.TextField{Name: "flag", Width: 2},
			variant.TextField{Name: "time", Width: 8},
			variant.TextField{Name: "status", Width: 10},
		),
		variant.Padding("align", 2),
	}
}

// AcquisitionLayout returns base with AcquisitionGroups laid after the
// header, for registering in a custom registry.
func AcquisitionLayout(base variant.Descriptor) variant.Descriptor {
	base.Groups = AcquisitionGroups()
	base.Note = "acquisition record"
	return base
}

// AcquisitionRegistry returns a registry holding AcquisitionLayout of each
// built-in descriptor for lengths.
func AcquisitionRegistry(lengths ...int64) (*variant.Registry, error) {
	reg := variant.NewRegistry()
	for _, length := range lengths {
		d, err := variant.Resolve(length)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(AcquisitionLayout(d)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
