package ui

var sparkRamp = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders throughput samples as a fixed-width run of block
// glyphs, newest sample rightmost. Short history pads on the left with
// the lowest glyph; values scale against the window maximum.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var peak float64
	for _, v := range data {
		if v > peak {
			peak = v
		}
	}

	out := make([]rune, 0, width)
	for i := 0; i < width-len(data); i++ {
		out = append(out, sparkRamp[0])
	}
	for _, v := range data {
		out = append(out, sparkGlyph(v, peak))
	}
	return string(out)
}

func sparkGlyph(v, peak float64) rune {
	if peak <= 0 || v <= 0 {
		return sparkRamp[0]
	}
	i := int(v / peak * float64(len(sparkRamp)-1))
	if i >= len(sparkRamp) {
		i = len(sparkRamp) - 1
	}
	return sparkRamp[i]
}
