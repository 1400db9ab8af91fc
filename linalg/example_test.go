package linalg_test

import (
	"fmt"

	"github.com/cwbudde/algo-nmf/linalg"
)

func ExampleMatrix_MulSub() {
	a, _ := linalg.NewFromSlice(2, 2, []float64{
		1, 2,
		3, 4,
	})
	h, _ := linalg.NewFromSlice(2, 4, []float64{
		1, 0, 1, 0,
		0, 1, 0, 1,
	})

	// Multiply a with h logically shifted one column to the right:
	// use the leading three columns of h and write at column offset 1.
	out := linalg.New(2, 4)
	out.MulSub(a, h, linalg.ProductSpec{
		Rows:   2,
		Inner:  2,
		Cols:   3,
		DstCol: 1,
	})

	for i := 0; i < out.Rows(); i++ {
		fmt.Println(out.RowView(i))
	}

	// Output:
	// [0 1 2 1]
	// [0 3 4 3]
}
