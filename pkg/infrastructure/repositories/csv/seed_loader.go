package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aereven/stockbook/pkg/domain/entities"
)

// Loader reads seed data from CSV files, for local development and demo
// environments where a Firestore project is not available.
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadItems loads inventory items from a CSV file
func (l *Loader) LoadItems(filename string) ([]*entities.InventoryItem, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open items file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read items CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("items CSV must have header and at least one data row")
	}

	expectedHeader := []string{"item_id", "name", "unit", "quantity", "min_stock", "max_stock"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("items CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var items []*entities.InventoryItem
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("items CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		item, err := parseItem(record)
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: %w", i+2, err)
		}

		items = append(items, item)
	}

	return items, nil
}

// LoadBatches loads stock batches from a CSV file. An empty expiry_date
// column means undated stock.
func (l *Loader) LoadBatches(filename string) ([]*entities.Batch, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open batches file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read batches CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("batches CSV must have header and at least one data row")
	}

	expectedHeader := []string{"batch_id", "item_id", "warehouse_id", "quantity", "unit_price", "expiry_date", "received_date"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("batches CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var batches []*entities.Batch
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("batches CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		batch, err := parseBatch(record)
		if err != nil {
			return nil, fmt.Errorf("batches CSV row %d: %w", i+2, err)
		}

		batches = append(batches, batch)
	}

	return batches, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseItem(record []string) (*entities.InventoryItem, error) {
	quantity, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %s", record[3])
	}

	item, err := entities.NewInventoryItem(record[0], record[1], record[2], quantity)
	if err != nil {
		return nil, err
	}

	if record[4] != "" {
		minStock, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min_stock: %s", record[4])
		}
		item.MinStockLevel = minStock
	}

	if record[5] != "" {
		maxStock, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max_stock: %s", record[5])
		}
		item.MaxStockLevel = maxStock
	}

	return item, nil
}

func parseBatch(record []string) (*entities.Batch, error) {
	quantity, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %s", record[3])
	}

	unitPrice, err := decimal.NewFromString(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price: %s", record[4])
	}

	var expiryDate *time.Time
	if record[5] != "" {
		parsed, err := time.Parse("2006-01-02", record[5])
		if err != nil {
			return nil, fmt.Errorf("invalid expiry_date format: %s (expected YYYY-MM-DD)", record[5])
		}
		expiryDate = &parsed
	}

	receivedDate, err := time.Parse("2006-01-02", record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid received_date format: %s (expected YYYY-MM-DD)", record[6])
	}

	return entities.NewBatch(record[0], record[1], record[2], quantity, unitPrice, expiryDate, receivedDate)
}
