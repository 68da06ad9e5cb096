package positions

import (
	"fmt"
	"io"
	"os"

	"github.com/xhhuango/json"
)

// LoadPositions reads a JSON array of positions from path.
func LoadPositions(path string) ([]Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open positions file: %w", err)
	}
	defer f.Close()

	return ReadPositions(f)
}

func ReadPositions(r io.Reader) ([]Position, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var positions []Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("parse positions: %w", err)
	}
	return positions, nil
}

// WriteBook writes the book as JSON.
func WriteBook(w io.Writer, book Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write book: %w", err)
	}
	return nil
}
