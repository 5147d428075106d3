package variant

import (
	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
	"github.com/malaterre/GEMS-PARM-01/internal/header"
)

func init() {
	for _, d := range builtinDescriptors() {
		Register(d)
	}
}

// builtinDescriptors is the table of observed layouts. New lengths are added
// here and nowhere else.
func builtinDescriptors() []Descriptor {
	primary := header.Constants{
		Magic:     [4]uint32{1430323200, 44, 131072, 44},
		Unk2Slot3: 2048,
		Unk3Slot2: 8,
	}
	wide := primary
	wide.Unk2Slot3 = 4096
	secondary := header.Constants{
		Magic:     [4]uint32{1430323200, 44, 524288, 44},
		Unk2Slot3: 4096,
		Unk3Slot2: 12,
	}
	trailerMarkers := []uint32{131072, 524288}
	big := []cursor.ByteOrder{cursor.BigEndian}
	little := []cursor.ByteOrder{cursor.LittleEndian}

	short := Descriptor{
		Name:      "2428",
		Length:    2428,
		Constants: primary,
		Group6:    header.IntegerLayout,
		Status:    StatusHeaderOnly,
		Orders:    little,
	}

	return []Descriptor{
		{
			Name:      "2420",
			Length:    2420,
			Constants: primary,
			Group6:    header.IntegerLayout,
			Status:    StatusComplete,
			Orders:    big,
			Groups: []GroupSpec{
				Opaque("body", 2320),
				Vector("trailer", 1, Check{Kind: CheckOneOf, Candidates: trailerMarkers}),
			},
			ExpectedLength: 2420,
		},
		short,
		short.Alias(2432),
		short.Alias(2436),
		{
			Name:      "3600",
			Length:    3600,
			Constants: primary,
			Group6:    header.IntegerLayout,
			Status:    StatusHeaderOnly,
			Orders:    little,
		},
		{
			Name:      "5648",
			Length:    5648,
			Constants: wide,
			Group6:    header.FloatLayout,
			Status:    StatusPartial,
			Note:      "body not derived",
		},
		{
			Name:      "7336",
			Length:    7336,
			Constants: wide,
			Group6:    header.FloatLayout,
			Status:    StatusPartial,
			Note:      "body not derived",
		},
		{
			Name:      "7480",
			Length:    7480,
			Constants: secondary,
			Group6:    header.FloatLayout,
			Status:    StatusPartial,
			Note:      "header constants differ; body not derived",
		},
	}
}
