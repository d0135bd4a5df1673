package numeric

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGroupKeys(t *testing.T) {
	g := mat.NewDense(9, 2, []float64{
		1, 1,
		1, 2,
		2, 1,
		2, 2,
		1, 1,
		math.NaN(), 1,
		1, math.NaN(),
		1, 2,
		2, 1,
	})

	keys := GroupKeys(g)

	if len(keys) != 6 {
		t.Fatalf("GroupKeys() len = %d, want 6", len(keys))
	}
	if _, ok := keys[JoinKey([]string{"1", "2"})]; !ok {
		t.Error("expected key [1 2]")
	}
	if _, ok := keys[JoinKey([]string{"1", "NaN"})]; !ok {
		t.Error("expected key [1 NaN]")
	}
	if _, ok := keys[JoinKey([]string{"2", "NaN"})]; ok {
		t.Error("did not expect key [2 NaN]")
	}
}

func TestPartitionMatrixSingleColumn(t *testing.T) {
	data := mat.NewDense(5, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
		10, 11, 12,
		13, 14, 15,
	})
	split := mat.NewDense(5, 1, []float64{1, 1, 2, 2, 1})

	result := PartitionMatrix(data, split)
	if len(result) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(result))
	}

	key1 := JoinKey([]string{"1"})
	key2 := JoinKey([]string{"2"})

	r1, c1 := result[key1].Dims()
	if r1 != 3 || c1 != 3 {
		t.Fatalf("result[1] dims = %d x %d, want 3 x 3", r1, c1)
	}
	if got := result[key1].At(1, 1); got != 5.0 {
		t.Errorf("result[1].At(1,1) = %v, want 5.0", got)
	}
	if got := result[key1].At(2, 2); got != 15.0 {
		t.Errorf("result[1].At(2,2) = %v, want 15.0", got)
	}

	r2, _ := result[key2].Dims()
	if r2 != 2 {
		t.Fatalf("result[2] rows = %d, want 2", r2)
	}
	if got := result[key2].At(0, 2); got != 9.0 {
		t.Errorf("result[2].At(0,2) = %v, want 9.0", got)
	}
}

func TestPartitionMatrixUnequalRowsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unequal row counts")
		}
	}()

	data := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	split := mat.NewDense(2, 1, []float64{1, 2})
	PartitionMatrix(data, split)
}

func TestPartitionVector(t *testing.T) {
	data := []float64{1, 4, 7, 10, 13}
	split := mat.NewDense(5, 2, []float64{
		1, 1,
		1, 2,
		2, 1,
		2, 2,
		1, 1,
	})

	result := PartitionVector(data, split)
	if len(result) != 4 {
		t.Fatalf("len(result) = %d, want 4", len(result))
	}

	key11 := JoinKey([]string{"1", "1"})
	key22 := JoinKey([]string{"2", "2"})

	if len(result[key11]) != 2 || result[key11][1] != 13.0 {
		t.Errorf("result[1,1] = %v, want [1 13]", result[key11])
	}
	if len(result[key22]) != 1 || result[key22][0] != 10.0 {
		t.Errorf("result[2,2] = %v, want [10]", result[key22])
	}
}
