package shade

// Canonical reference tables. These consolidate the per-deployment copies
// that used to drift apart; all entry points must read from here.

// VitaClassicalID identifies the Vita Classical guide.
const VitaClassicalID = "vita-classical"

// Vita3DMasterID identifies the Vita 3D-Master guide.
const Vita3DMasterID = "vita-3d-master"

// ChromascopID identifies the Ivoclar Chromascop guide.
const ChromascopID = "ivoclar-chromascop"

func init() {
	register(&Guide{
		ID:   VitaClassicalID,
		Name: "Vita Classical",
		Swatches: []Swatch{
			{"A1", RGB{255, 240, 220}},
			{"A2", RGB{240, 224, 200}},
			{"A3", RGB{225, 205, 185}},
			{"A3.5", RGB{210, 190, 170}},
			{"B1", RGB{250, 235, 210}},
			{"B2", RGB{235, 215, 190}},
			{"C1", RGB{220, 200, 180}},
			{"C2", RGB{205, 185, 165}},
			{"D2", RGB{200, 180, 160}},
		},
	})

	register(&Guide{
		ID:   Vita3DMasterID,
		Name: "Vita 3D-Master",
		Swatches: []Swatch{
			{"1M1", RGB{255, 245, 235}},
			{"2M2", RGB{235, 220, 205}},
			{"3M3", RGB{215, 200, 185}},
			{"4M1", RGB{190, 180, 165}},
		},
	})

	register(&Guide{
		ID:   ChromascopID,
		Name: "Ivoclar Chromascop",
		Swatches: []Swatch{
			{"100", RGB{255, 240, 230}},
			{"200", RGB{235, 220, 205}},
			{"300", RGB{220, 200, 180}},
			{"400", RGB{205, 185, 165}},
		},
	})
}
