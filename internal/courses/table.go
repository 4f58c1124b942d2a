package courses

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minCells is the number of cells a course row carries; a 20th holds remarks.
const minCells = 19

// Course is one row of a department course table. Field order matches the
// columns of the table and is kept when encoded.
type Course struct {
	Header       string  `json:"標題"`
	Required     string  `json:"必選別"`
	Number       string  `json:"選課號碼"`
	Name         string  `json:"科目名稱"`
	Prerequisite string  `json:"先修科目"`
	Term         string  `json:"全半年"`
	Credits      string  `json:"學分數"`
	LectureHours string  `json:"上課時數"`
	LabHours     string  `json:"實習時數"`
	LectureTime  string  `json:"上課時間"`
	LabTime      string  `json:"實習時間"`
	LectureRoom  string  `json:"上課教室"`
	LabRoom      string  `json:"實習教室"`
	Lecturer     string  `json:"上課教師"`
	LabTeacher   string  `json:"實習教師"`
	Unit         string  `json:"開課單位"`
	Capacity     string  `json:"開課人數"`
	External     string  `json:"外系人數"`
	Remaining    string  `json:"可加選餘額"`
	Language     string  `json:"授課語言"`
	Remark       *string `json:"備註,omitempty"`
}

// Table is a titled group of courses.
type Table struct {
	Header  string
	Courses []Course
}

// ParseTables extracts every course table on a department page. Tables
// without course rows are skipped.
func ParseTables(doc *goquery.Document) []Table {
	var tables []Table

	doc.Find(`table[name="mytable"]`).Each(func(_ int, t *goquery.Selection) {
		rows := t.Find("tr")
		table := Table{Header: tableHeader(rows.First())}

		rows.Each(func(i int, row *goquery.Selection) {
			if i < 2 {
				return
			}
			cells := row.Find("td").Map(func(_ int, c *goquery.Selection) string {
				return cellText(c)
			})
			if len(cells) < minCells {
				return
			}
			table.Courses = append(table.Courses, newCourse(table.Header, cells))
		})

		if len(table.Courses) > 0 {
			tables = append(tables, table)
		}
	})

	return tables
}

// Flatten concatenates the courses of all tables.
func Flatten(tables []Table) []Course {
	courses := []Course{}
	for _, t := range tables {
		courses = append(courses, t.Courses...)
	}
	return courses
}

func tableHeader(row *goquery.Selection) string {
	cell := row.Find("td").First()
	if cell.Length() == 0 {
		return ""
	}
	if strong := cell.Find("div.tablesorter-header-inner strong").First(); strong.Length() > 0 {
		return cellText(strong)
	}
	return cellText(cell)
}

func newCourse(header string, c []string) Course {
	course := Course{
		Header:       header,
		Required:     c[0],
		Number:       c[1],
		Name:         c[2],
		Prerequisite: c[3],
		Term:         c[4],
		Credits:      c[5],
		LectureHours: c[6],
		LabHours:     c[7],
		LectureTime:  c[8],
		LabTime:      c[9],
		LectureRoom:  c[10],
		LabRoom:      c[11],
		Lecturer:     c[12],
		LabTeacher:   c[13],
		Unit:         c[14],
		Capacity:     c[15],
		External:     c[16],
		Remaining:    c[17],
		Language:     c[18],
	}
	if len(c) > minCells {
		remark := c[minCells]
		course.Remark = &remark
	}
	return course
}

// cellText returns the visible text of a cell, with <br> as a line break
// and runs of spaces collapsed.
func cellText(s *goquery.Selection) string {
	s = s.Clone()
	s.Find("br").ReplaceWithHtml("\n")

	lines := strings.Split(s.Text(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
