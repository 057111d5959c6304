package elevutils

import "testing"

func TestAbs(t *testing.T) {
	valueArray := []int{-5, -1, 0, 1, 7}
	expectedArray := []int{5, 1, 0, 1, 7}

	for index, value := range valueArray {
		if Abs(value) != expectedArray[index] {
			t.Errorf("Abs(%d) = %d, expected %d", value, Abs(value), expectedArray[index])
		}
	}
}
