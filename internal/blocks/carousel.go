package blocks

import "time"

// Lightbox is the full-screen viewer state of a GALLERY block.
type Lightbox struct {
	Count int  `json:"count"`
	Index int  `json:"index"`
	Open  bool `json:"open"`
}

func NewLightbox(count int) Lightbox {
	return Lightbox{Count: count}
}

// OpenAt shows image i. Out-of-range indexes leave the lightbox closed.
func (l Lightbox) OpenAt(i int) Lightbox {
	if i < 0 || i >= l.Count {
		return l
	}
	l.Index = i
	l.Open = true
	return l
}

func (l Lightbox) Close() Lightbox {
	l.Open = false
	return l
}

func (l Lightbox) Next() Lightbox {
	if !l.Open || l.Count == 0 {
		return l
	}
	l.Index = (l.Index + 1) % l.Count
	return l
}

func (l Lightbox) Prev() Lightbox {
	if !l.Open || l.Count == 0 {
		return l
	}
	l.Index = (l.Index - 1 + l.Count) % l.Count
	return l
}

// Indicators returns one dot per image, true for the current one.
func (l Lightbox) Indicators() []bool {
	return indicators(l.Count, l.Index)
}

// SliderState is a SLIDER block's carousel. It advances once per Interval
// when it holds more than one image; any manual navigation restarts the
// interval.
type SliderState struct {
	Count    int
	Index    int
	Interval time.Duration
	elapsed  time.Duration
}

func NewSlider(count int, interval time.Duration) SliderState {
	return SliderState{Count: count, Interval: interval}
}

func (s SliderState) AutoAdvance() bool {
	return s.Count > 1 && s.Interval > 0
}

// Tick moves the carousel forward by d of wall time.
func (s SliderState) Tick(d time.Duration) SliderState {
	if !s.AutoAdvance() || d <= 0 {
		return s
	}
	s.elapsed += d
	for s.elapsed >= s.Interval {
		s.elapsed -= s.Interval
		s.Index = (s.Index + 1) % s.Count
	}
	return s
}

// Remaining is the time left until the next automatic advance.
func (s SliderState) Remaining() time.Duration {
	if !s.AutoAdvance() {
		return 0
	}
	return s.Interval - s.elapsed
}

func (s SliderState) Next() SliderState {
	if s.Count == 0 {
		return s
	}
	return s.GoTo((s.Index + 1) % s.Count)
}

func (s SliderState) Prev() SliderState {
	if s.Count == 0 {
		return s
	}
	return s.GoTo((s.Index - 1 + s.Count) % s.Count)
}

func (s SliderState) GoTo(i int) SliderState {
	if i < 0 || i >= s.Count {
		return s
	}
	s.Index = i
	s.elapsed = 0
	return s
}

func (s SliderState) Indicators() []bool {
	return indicators(s.Count, s.Index)
}

func indicators(count, current int) []bool {
	if count <= 0 {
		return nil
	}
	dots := make([]bool, count)
	if current >= 0 && current < count {
		dots[current] = true
	}
	return dots
}
