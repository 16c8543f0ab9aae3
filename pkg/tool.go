package pkg

// Contains check source have target
func Contains(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// PairKey 以字典序組合兩個 member ID, 與參數順序無關
func PairKey(a, b string) string {
	if a < b {
		return a + "_" + b
	}
	return b + "_" + a
}
