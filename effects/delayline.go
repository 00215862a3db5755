package effects

import "math"

// delayLine is a circular buffer read at fractional delays.
type delayLine struct {
	buffer   []float64
	writePos int
}

func newDelayLine(size int) delayLine {
	return delayLine{buffer: make([]float64, max(size, 4))}
}

func (d *delayLine) write(x float64) {
	d.buffer[d.writePos] = x
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// read returns the sample written delay samples before the last write.
func (d *delayLine) read(delay int) float64 {
	size := len(d.buffer)
	return d.buffer[((d.writePos-1-delay)%size+size)%size]
}

// readFractional reads with four-point Hermite interpolation.
func (d *delayLine) readFractional(delay float64) float64 {
	delay = max(0, min(delay, float64(len(d.buffer)-3)))
	p := int(math.Floor(delay))
	t := delay - float64(p)

	xm1 := d.read(max(0, p-1))
	x0 := d.read(p)
	x1 := d.read(p + 1)
	x2 := d.read(p + 2)

	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + x0
}

func (d *delayLine) reset() {
	clear(d.buffer)
	d.writePos = 0
}
