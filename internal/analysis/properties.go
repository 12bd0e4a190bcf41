package analysis

import (
	"regexp"

	"kitenav/internal/document"
	"kitenav/internal/lang"
	"kitenav/internal/scanner"
)

// findPropertyReferences collects per-instance property matches for a schema
// or component type across the whole workspace. Matches are anchored to
// individual instantiations, so same-named properties on different instances
// of one type never conflate.
func (e *Engine) findPropertyReferences(origin *document.Document, typeName, prop string, out *locationSet) {
	for _, f := range e.searchFiles(origin) {
		d := document.New(f.uri, f.text)
		if f.uri == origin.URI {
			d = origin
		}
		propertyMatchesInFile(d, typeName, prop, out)
	}
}

// propertyMatchesInFile finds, inside one file, every instantiation of the
// exact type (definitions skipped by construction) and records (a) direct
// assignments `prop = value` inside the instantiation body and (b) access
// expressions `instance.prop` anywhere else in the file.
func propertyMatchesInFile(d *document.Document, typeName, prop string, out *locationSet) {
	instances := scanner.FindInstantiations(d.Text, typeName)
	if len(instances) == 0 {
		return
	}

	cl := lang.Classify(d.Text)
	assignPattern := regexp.MustCompile(`(?m)^\s*(` + regexp.QuoteMeta(prop) + `)\s*=[^=]`)

	for _, inst := range instances {
		body := d.Text[inst.BodyStart:inst.BodyEnd]
		for _, m := range assignPattern.FindAllStringSubmatchIndex(body, -1) {
			at := inst.BodyStart + m[2]
			if !cl.IsReferencePosition(at) {
				continue
			}
			out.add(d, at, inst.BodyStart+m[3])
		}

		accessPattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(inst.Name) + `\.(` + regexp.QuoteMeta(prop) + `)\b`)
		for _, m := range accessPattern.FindAllStringSubmatchIndex(d.Text, -1) {
			if !cl.IsReferencePosition(m[2]) {
				continue
			}
			out.add(d, m[2], m[3])
		}
	}
}

// instanceMatches collects one instance's property matches only: assignments
// in its body and dot accesses through its name, within the same file.
func instanceMatches(d *document.Document, inst *scanner.BlockRef, prop string, out *locationSet) {
	cl := lang.Classify(d.Text)

	assignPattern := regexp.MustCompile(`(?m)^\s*(` + regexp.QuoteMeta(prop) + `)\s*=[^=]`)
	body := d.Text[inst.BodyStart:inst.BodyEnd]
	for _, m := range assignPattern.FindAllStringSubmatchIndex(body, -1) {
		at := inst.BodyStart + m[2]
		if !cl.IsReferencePosition(at) {
			continue
		}
		out.add(d, at, inst.BodyStart+m[3])
	}

	accessPattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(inst.Name) + `\.(` + regexp.QuoteMeta(prop) + `)\b`)
	for _, m := range accessPattern.FindAllStringSubmatchIndex(d.Text, -1) {
		if !cl.IsReferencePosition(m[2]) {
			continue
		}
		out.add(d, m[2], m[3])
	}
}

// propertyAssignmentAt reports whether the cursor sits on an assignment of
// prop inside the instance body.
func propertyAssignmentAt(text string, inst *scanner.BlockRef, prop string, cursor int) bool {
	assignPattern := regexp.MustCompile(`(?m)^\s*(` + regexp.QuoteMeta(prop) + `)\s*=[^=]`)
	body := text[inst.BodyStart:inst.BodyEnd]
	for _, m := range assignPattern.FindAllStringSubmatchIndex(body, -1) {
		start := inst.BodyStart + m[2]
		end := inst.BodyStart + m[3]
		if cursor >= start && cursor <= end {
			return true
		}
	}
	return false
}
