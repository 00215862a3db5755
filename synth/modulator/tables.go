package modulator

import "sync"

type curveTables [curveCount][2][2][resolution]float32

var curves = sync.OnceValue(func() *curveTables {
	t := new(curveTables)
	for c := range curveCount {
		for bipolar := range 2 {
			for negative := range 2 {
				row := &t[c][bipolar][negative]
				for i := range row {
					v := float64(i) / resolution
					if negative == 1 {
						v = 1 - v
					}
					row[i] = float32(curveValue(Curve(c), bipolar == 1, v))
				}
			}
		}
	}
	return t
})
