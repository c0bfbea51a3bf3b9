package convert

type Option func(c *Converter)

// WithMaxSource bounds the source image side, checked from the header in
// Decode and against the target size in Convert.
func WithMaxSource(side int) Option {
	return func(c *Converter) {
		c.maxSource = side
	}
}
