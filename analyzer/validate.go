package analyzer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemas = map[Mode]*jsonschema.Schema{
	ModeWord:     mustCompileSchema("word.json"),
	ModeSentence: mustCompileSchema("sentence.json"),
}

func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("load schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// Validate parses candidate and checks it against the schema of mode.
// It returns *WordAnalysis or *SentenceAnalysis.
func Validate(candidate string, mode Mode) (any, error) {
	switch mode {
	case ModeWord:
		w, err := ValidateWord(candidate)
		if err != nil {
			return nil, err
		}
		return w, nil
	case ModeSentence:
		s, err := ValidateSentence(candidate)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, ErrInvalidMode
	}
}

func ValidateWord(candidate string) (*WordAnalysis, error) {
	var w WordAnalysis
	if err := validateInto(candidate, ModeWord, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func ValidateSentence(candidate string) (*SentenceAnalysis, error) {
	var s SentenceAnalysis
	if err := validateInto(candidate, ModeSentence, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func validateInto(candidate string, mode Mode, out any) error {
	var doc any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return &Error{Kind: KindParseFailure, Mode: mode, Message: err.Error(), Err: err}
	}

	if err := schemas[mode].Validate(doc); err != nil {
		field := ""
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			field = offendingField(ve)
		}
		return &Error{
			Kind:    KindSchemaMismatch,
			Mode:    mode,
			Field:   field,
			Message: "candidate does not match " + string(mode) + " schema",
			Err:     err,
		}
	}

	// 结构已经通过 schema，这里只做类型化解码。
	if err := json.Unmarshal([]byte(candidate), out); err != nil {
		return &Error{Kind: KindSchemaMismatch, Mode: mode, Message: err.Error(), Err: err}
	}
	return nil
}

var missingPropRe = regexp.MustCompile(`'([^']+)'`)

// offendingField picks the shallowest failing location from the error tree
// and renders it as a dotted path, e.g. "components[0].role".
func offendingField(root *jsonschema.ValidationError) string {
	var leaves []*jsonschema.ValidationError
	var walk func(*jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		if len(ve.Causes) == 0 {
			leaves = append(leaves, ve)
			return
		}
		for _, c := range ve.Causes {
			walk(c)
		}
	}
	walk(root)

	paths := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		loc := leaf.InstanceLocation
		if strings.HasSuffix(leaf.KeywordLocation, "/required") {
			if m := missingPropRe.FindStringSubmatch(leaf.Message); m != nil {
				loc = loc + "/" + m[1]
			}
		}
		paths = append(paths, loc)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		di, dj := strings.Count(paths[i], "/"), strings.Count(paths[j], "/")
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
	if len(paths) == 0 {
		return ""
	}
	return pointerToPath(paths[0])
}

func pointerToPath(ptr string) string {
	var b strings.Builder
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if tok == "" {
			continue
		}
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(tok); err == nil {
			b.WriteString("[" + tok + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}
