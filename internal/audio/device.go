package audio

import "strings"

// deviceInfo is the subset of portaudio.DeviceInfo used for selection.
type deviceInfo struct {
	Name             string
	MaxInputChannels int
}

var (
	loopbackKeywords = []string{"blackhole", "vb-cable", "loopback", "monitor", "soundflower"}
	micKeywords      = []string{"microphone", "input", "mic", "built-in"}
	preferredMics    = []string{"macbook", "built-in"}
)

// Device classes.
const (
	classMic      = "mic"
	classLoopback = "loopback"
)

// classifyDevice reports whether name looks like a microphone or a loopback
// (system audio) device. Unknown devices return "".
func classifyDevice(name string) string {
	for _, kw := range loopbackKeywords {
		if containsIgnoreCase(name, kw) {
			return classLoopback
		}
	}
	for _, kw := range micKeywords {
		if containsIgnoreCase(name, kw) {
			return classMic
		}
	}
	return ""
}

func isExcluded(name string, excluded []string) bool {
	for _, ex := range excluded {
		if containsIgnoreCase(name, ex) {
			return true
		}
	}
	return false
}

// preferDevice reports whether name should replace current as the chosen mic.
func preferDevice(name, current string) bool {
	for _, p := range preferredMics {
		if containsIgnoreCase(name, p) && !containsIgnoreCase(current, p) {
			return true
		}
	}
	return false
}

// pickDevice returns the index of the input device to open, or -1 to fall back
// to the host default. A non-empty want selects by name; otherwise the best
// microphone wins. Loopback and excluded devices are never picked.
func pickDevice(devices []deviceInfo, want string, excluded []string) int {
	best := -1
	for i, dev := range devices {
		if dev.MaxInputChannels < 1 || isExcluded(dev.Name, excluded) {
			continue
		}
		if want != "" {
			if containsIgnoreCase(dev.Name, want) {
				return i
			}
			continue
		}
		if classifyDevice(dev.Name) != classMic {
			continue
		}
		if best < 0 || preferDevice(dev.Name, devices[best].Name) {
			best = i
		}
	}
	return best
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
