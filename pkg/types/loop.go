package types

// LoopRange repeats the inclusive instruction block [From, To] Times times in
// place of running it once.
type LoopRange struct {
	Times uint `yaml:"times"`
	From  int  `yaml:"from_action_num"`
	To    int  `yaml:"to_action_num"`
}

// Len is the number of instructions in one repetition of the block.
func (r LoopRange) Len() int {
	if r.To < r.From {
		return 0
	}
	return r.To - r.From + 1
}
