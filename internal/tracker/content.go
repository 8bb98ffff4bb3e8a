package tracker

// content holds appended data, either bytes or runes.
type content struct {
	chars   bool
	enabled bool
	bytes   []byte
	runes   []rune
}

func (c *content) size() int {
	if c.chars {
		return len(c.runes)
	}
	return len(c.bytes)
}

// appendBytes writes p at index at, padding with zeros when writes through
// SetSource extended the length past the stored content.
func (c *content) appendBytes(at int, p []byte) {
	if !c.enabled {
		return
	}
	if pad := at - len(c.bytes); pad > 0 {
		c.bytes = append(c.bytes, make([]byte, pad)...)
	}
	c.bytes = append(c.bytes[:at], p...)
}

func (c *content) appendChars(at int, p []rune) {
	if !c.enabled {
		return
	}
	if pad := at - len(c.runes); pad > 0 {
		c.runes = append(c.runes, make([]rune, pad)...)
	}
	c.runes = append(c.runes[:at], p...)
}

func (c *content) slice(start, end int) string {
	if !c.enabled {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if n := c.size(); end > n {
		end = n
	}
	if start >= end {
		return ""
	}
	if c.chars {
		return string(c.runes[start:end])
	}
	return string(c.bytes[start:end])
}
