package csv

import (
	csvwriter "encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nhc-net/nsg-sync/types"
)

type IChangeCsvClient interface {
	Export(changes []types.GroupChange)
}

type ChangeCsvClient struct {
	WorkingFolderPath string
	ChangeCsv         *ChangeCsv
	Logger            *logrus.Logger
}

type ChangeCsv struct {
	Header []string
	Rows   []*ChangeCsvRow
}

func NewChangeCsvClient(workingFolderPath string, logger *logrus.Logger) *ChangeCsvClient {
	return &ChangeCsvClient{
		WorkingFolderPath: workingFolderPath,
		ChangeCsv:         &ChangeCsv{Header: []string{"Dimension", "Grouping Key", "Security Group", "Action", "Added", "Removed", "Error"}},
		Logger:            logger,
	}
}

type ChangeCsvRow struct {
	Dimension string
	Key       string
	GroupName string
	Action    types.ChangeAction
	Added     string
	Removed   string
	Error     string
}

func (csv *ChangeCsv) AddRow(row *ChangeCsvRow) {
	csv.Rows = append(csv.Rows, row)
}

func (csvClient *ChangeCsvClient) Export(changes []types.GroupChange) {
	for _, change := range changes {
		csvRow := ChangeCsvRow{
			Dimension: change.Dimension,
			Key:       change.Key,
			GroupName: change.GroupName,
			Action:    change.Action,
			Added:     strings.Join(change.Added, ";"),
			Removed:   strings.Join(change.Removed, ";"),
			Error:     change.Error,
		}
		csvClient.ChangeCsv.AddRow(&csvRow)
	}

	sort.Sort(ByDimensionActionAndGroup(csvClient.ChangeCsv.Rows))

	csvClient.writeCsv()
}

func (csvClient *ChangeCsvClient) writeCsv() {
	csvData := [][]string{csvClient.ChangeCsv.Header}
	for _, row := range csvClient.ChangeCsv.Rows {
		csvData = append(csvData, []string{
			row.Dimension,
			row.Key,
			row.GroupName,
			string(row.Action),
			row.Added,
			row.Removed,
			row.Error,
		})
	}

	csvFilePath := filepath.Join(csvClient.WorkingFolderPath, "changes.csv")
	csvFile, err := os.Create(csvFilePath)
	if err != nil {
		csvClient.Logger.Fatalf("Failed to create file: %v", err)
	}
	defer csvFile.Close()
	csvWriter := csvwriter.NewWriter(csvFile)
	defer csvWriter.Flush()
	err = csvWriter.WriteAll(csvData)
	if err != nil {
		csvClient.Logger.Fatalf("Failed to write CSV file: %v", err)
	}
	csvClient.Logger.Infof("Changes written to %s", csvFilePath)
}

type ByDimensionActionAndGroup []*ChangeCsvRow

func (o ByDimensionActionAndGroup) Len() int      { return len(o) }
func (o ByDimensionActionAndGroup) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o ByDimensionActionAndGroup) Less(i, j int) bool {
	if o[i].Dimension != o[j].Dimension {
		return o[i].Dimension < o[j].Dimension
	}

	if o[i].Action != o[j].Action {
		return o[i].Action < o[j].Action
	}

	return o[i].GroupName < o[j].GroupName
}
