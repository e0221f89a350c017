package classify

import (
	"bufio"
	"os"
	"strings"
)

// DescriptorCategories parses a graphics config.xml and reports which
// categories its record mappings point at. The game maps pictures with
// "from"/"to" records whose targets name the destination tree, so a line
// mentioning person portraits firmly marks the pack as faces even when the
// file layout is ambiguous.
func DescriptorCategories(configPath string) ([]Category, error) {
	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		cats []Category
		seen = map[Category]bool{}
	)
	add := func(c Category) {
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		switch {
		case strings.Contains(line, "graphics/pictures/person") && strings.Contains(line, "portrait"):
			add(Faces)
		case strings.Contains(line, "graphics/pictures/team") && strings.Contains(line, "kit"):
			add(Kits)
		case strings.Contains(line, "graphics/pictures/team") && strings.Contains(line, "logo"):
			add(Logos)
		case strings.Contains(line, "graphics/pictures/club") && strings.Contains(line, "logo"):
			add(Logos)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cats, nil
}
