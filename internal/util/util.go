package util

// MaskCode obscures an invite code for logging purposes, showing only the
// first and last few characters.
func MaskCode(code string) string {
	if len(code) > 8 {
		return code[:4] + "..." + code[len(code)-4:]
	} else if len(code) > 4 {
		return code[:2] + "..." + code[len(code)-2:]
	} else if len(code) > 2 {
		return code[:1] + "..." + code[len(code)-1:]
	}
	return code
}
