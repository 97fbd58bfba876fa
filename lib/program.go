package lib

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const programExt = ".simpc"

type Program struct {
	Name   string
	Source string
}

func ReadProgramsDir(dir string) ([]Program, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	programs := []Program{}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != programExt {
			continue
		}
		p, err := ReadProgramFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}

	sort.Slice(programs, func(i, j int) bool {
		return programs[i].Name < programs[j].Name
	})
	return programs, nil
}

func ReadProgramFile(filePath string) (Program, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return Program{}, err
	}
	return Program{
		Name:   programNameFromPath(filePath),
		Source: strings.ReplaceAll(string(bytes), "\r\n", "\n"),
	}, nil
}

func programNameFromPath(filePath string) string {
	fileName := filepath.Base(filePath)
	parts := strings.Split(fileName, ".")
	return parts[0]
}
