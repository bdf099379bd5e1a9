package renko

import "BrickWatch/internal/model"

// barRing is a fixed-capacity ring buffer of candlesticks, oldest-evicted.
// The tracker exclusively owns it; callers only ever see copies.
type barRing struct {
	buf   []model.CandleStick
	start int
	count int
}

func newBarRing(capacity int) *barRing {
	if capacity < 1 {
		capacity = 1
	}
	return &barRing{buf: make([]model.CandleStick, capacity)}
}

func (r *barRing) push(c model.CandleStick) {
	idx := (r.start + r.count) % len(r.buf)
	r.buf[idx] = c
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.start = (r.start + 1) % len(r.buf)
	}
}

func (r *barRing) len() int { return r.count }

func (r *barRing) capacity() int { return len(r.buf) }

func (r *barRing) last() (model.CandleStick, bool) {
	if r.count == 0 {
		return model.CandleStick{}, false
	}
	return r.buf[(r.start+r.count-1)%len(r.buf)], true
}

// slice returns the buffered bars in feed order, oldest first.
func (r *barRing) slice() []model.CandleStick {
	out := make([]model.CandleStick, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}
