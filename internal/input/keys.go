// internal/input/keys.go
package input

// Virtual-key codes for the names the wire protocol accepts. Values follow
// the Windows VK_* numbering, which the platform synthesizers translate.
const (
	vkBack    = 0x08
	vkTab     = 0x09
	vkReturn  = 0x0D
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkEscape  = 0x1B
	vkSpace   = 0x20
	vkLeft    = 0x25
	vkUp      = 0x26
	vkRight   = 0x27
	vkDown    = 0x28
	vkDelete  = 0x2E
	vkLWin    = 0x5B
	vkRWin    = 0x5C
	vkF1      = 0x70
)

// namedKeys covers the multi-character key names. Case matters for the
// Windows-key and function-key spellings, matching the wire contract.
var namedKeys = map[string]uint16{
	"ctrl":      vkControl,
	"shift":     vkShift,
	"alt":       vkMenu,
	"enter":     vkReturn,
	"tab":       vkTab,
	"escape":    vkEscape,
	"space":     vkSpace,
	"delete":    vkDelete,
	"backspace": vkBack,
	"LWin":      vkLWin,
	"lwin":      vkLWin,
	"win":       vkLWin,
	"RWin":      vkRWin,
	"rwin":      vkRWin,
	"F1":        vkF1,
	"F2":        vkF1 + 1,
	"F3":        vkF1 + 2,
	"F4":        vkF1 + 3,
	"F5":        vkF1 + 4,
	"F6":        vkF1 + 5,
	"F7":        vkF1 + 6,
	"F8":        vkF1 + 7,
	"F9":        vkF1 + 8,
	"F10":       vkF1 + 9,
	"F11":       vkF1 + 10,
	"F12":       vkF1 + 11,
	"left":      vkLeft,
	"right":     vkRight,
	"up":        vkUp,
	"down":      vkDown,
}

// resolveKey maps a wire key name to a virtual-key code. Single characters
// go through the keyboard layout; anything unrecognized maps to 0, which
// the synthesizer ignores.
func (c *Controller) resolveKey(name string) uint16 {
	if code, ok := namedKeys[name]; ok {
		return code
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return c.synth.LayoutKey(runes[0])
	}
	return 0
}
