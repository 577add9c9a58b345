package effect

// Chain composes two effects so that the first's output feeds the second's
// input. A Chain is itself an Effect, so chains nest and the runtime's slot
// table can hold heterogeneous effect types uniformly.
type Chain struct {
	first  Effect
	second Effect
}

// NewChain composes a and b, a followed by b.
func NewChain(a, b Effect) *Chain {
	return &Chain{first: a, second: b}
}

// First and Second return the composed effects, e.g. for introspection.
func (c *Chain) First() Effect  { return c.first }
func (c *Chain) Second() Effect { return c.second }

func (c *Chain) Process(in float32) float32 {
	return c.second.Process(c.first.Process(in))
}

func (c *Chain) ProcessStereo(left, right float32) (float32, float32) {
	l, r := c.first.ProcessStereo(left, right)
	return c.second.ProcessStereo(l, r)
}

func (c *Chain) ProcessBlock(input, output []float32) {
	tmp := make([]float32, len(input))
	c.first.ProcessBlock(input, tmp)
	c.second.ProcessBlock(tmp, output)
}

func (c *Chain) ProcessBlockInplace(buffer []float32) {
	c.first.ProcessBlockInplace(buffer)
	c.second.ProcessBlockInplace(buffer)
}

func (c *Chain) ProcessBlockStereo(inL, inR, outL, outR []float32) {
	tmpL := make([]float32, len(inL))
	tmpR := make([]float32, len(inR))
	c.first.ProcessBlockStereo(inL, inR, tmpL, tmpR)
	c.second.ProcessBlockStereo(tmpL, tmpR, outL, outR)
}

func (c *Chain) ProcessBlockStereoInplace(left, right []float32) {
	c.first.ProcessBlockStereoInplace(left, right)
	c.second.ProcessBlockStereoInplace(left, right)
}

func (c *Chain) SetSampleRate(sampleRate float32) {
	c.first.SetSampleRate(sampleRate)
	c.second.SetSampleRate(sampleRate)
}

func (c *Chain) Reset() {
	c.first.Reset()
	c.second.Reset()
}

// LatencySamples is the sum of both parts' latencies.
func (c *Chain) LatencySamples() int {
	return c.first.LatencySamples() + c.second.LatencySamples()
}

// IsTrueStereo is the logical OR of both parts.
func (c *Chain) IsTrueStereo() bool {
	return c.first.IsTrueStereo() || c.second.IsTrueStereo()
}

func (c *Chain) SetTempoContext(ctx TempoContext) {
	c.first.SetTempoContext(ctx)
	c.second.SetTempoContext(ctx)
}
