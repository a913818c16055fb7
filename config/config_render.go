package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/0xPolygon/claimdeployer/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
	"gopkg.in/yaml.v3"
)

const (
	startTag = "{{"
	endTag   = "}}"
	// mark of an unquoted var while the file goes through the TOML parser
	typeMark = ":int"
)

var (
	ErrCycleVars                 = fmt.Errorf("cycle vars")
	ErrMissingVars               = fmt.Errorf("missing vars")
	ErrUnsupportedConfigFileType = fmt.Errorf("unsupported config file type")

	unquotedVarRe = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	quotedVarRe   = regexp.MustCompile(`=\s*\"\{\{([^}:]+` + typeMark + `)\}\}\"`)
	markedVarRe   = regexp.MustCompile(`\{\{([^}:]+` + typeMark + `)\}\}`)
)

// FileData is a named TOML document
type FileData struct {
	Name    string
	Content string
}

// ConfigRender merges TOML documents and resolves the {{Var}} indirections
// inside them. A var is resolved, in order, from the environment
// (<EnvPrefix>_<Var with . replaced by _>) and from the merged documents.
type ConfigRender struct {
	// later files override earlier ones
	FilesData []FileData
	// usually os.LookupEnv
	LookupEnvFunc func(key string) (string, bool)
	EnvPrefix     string
}

func NewConfigRender(filesData []FileData, envPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:     filesData,
		LookupEnvFunc: os.LookupEnv,
		EnvPrefix:     envPrefix,
	}
}

// Render merges all the files and resolves the vars
func (c *ConfigRender) Render() (string, error) {
	mergedData, err := c.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return c.ResolveVars(mergedData)
}

// Merge loads every file over the previous ones and returns the result as TOML
func (c *ConfigRender) Merge() (string, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		err := k.Load(rawbytes.Provider([]byte(quoteVars(data.Content))), toml.Parser())
		if err != nil {
			log.Errorf("error loading file %s. Err:%v", data.Name, err)
			return "", fmt.Errorf("fail to load file %s as toml. Err: %w", data.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return unquoteVars(string(marshaled)), nil
}

// ResolveVars fills the vars of fullConfigData. Vars that remain unresolved
// return ErrMissingVars, vars that depend on each other (A={{B}}, B={{A}})
// return ErrCycleVars.
func (c *ConfigRender) ResolveVars(fullConfigData string) (string, error) {
	tpl, values, err := c.readTemplateAndValues(fullConfigData)
	if err != nil {
		return "", err
	}
	rendered := removeTypeMarks(c.executeTemplate(tpl, values))
	if missing := c.unresolvedVars(tpl, values); len(missing) > 0 {
		return rendered, fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
	}
	// a var whose value is another var needs more passes, each one must
	// reduce the pending vars or there is a cycle
	final, err := c.resolvePending(rendered)
	if err != nil {
		return fullConfigData, err
	}
	return final, nil
}

func (c *ConfigRender) resolvePending(partial string) (string, error) {
	data := unquoteVars(partial)
	pending := c.GetVars(data)
	if len(pending) == 0 {
		return partial, nil
	}
	log.Debugf("resolving pending vars: %v", pending)
	for len(pending) > 0 {
		previous := pending
		tpl, values, err := c.readTemplateAndValues(data)
		if err != nil {
			return "", fmt.Errorf("fails to read template resolving pending vars. Err: %w", err)
		}
		data = removeTypeMarks(unquoteVars(c.executeTemplate(tpl, values)))
		pending = c.GetVars(data)
		if len(pending) == len(previous) {
			return partial, fmt.Errorf("not resolved cycle vars: %v. Err: %w", pending, ErrCycleVars)
		}
	}
	return data, nil
}

// readTemplateAndValues expects unquoted vars (A={{B}}, not A="{{B}}")
func (c *ConfigRender) readTemplateAndValues(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err:%w", err)
	}
	k := koanf.New(".")
	err = k.Load(rawbytes.Provider([]byte(quoteVars(data))), toml.Parser())
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing config values. Err: %w", err)
	}
	return tpl, k.All(), nil
}

// quoteVars turns A={{B}} into A="{{B:int}}" so the document is valid TOML
func quoteVars(data string) string {
	return unquotedVarRe.ReplaceAllString(data, `= "{{${1}`+typeMark+`}}"`)
}

// unquoteVars reverts quoteVars
func unquoteVars(data string) string {
	return quotedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := quotedVarRe.FindStringSubmatch(match)
		return "= " + startTag + strings.TrimSuffix(submatch[1], typeMark) + endTag
	})
}

func removeTypeMarks(data string) string {
	return markedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := markedVarRe.FindStringSubmatch(match)
		return startTag + strings.TrimSuffix(submatch[1], typeMark) + endTag
	})
}

func (c *ConfigRender) executeTemplate(tpl *fasttemplate.Template, values map[string]interface{}) string {
	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := c.lookupEnv(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return w.Write([]byte(fmt.Sprintf("%v", v)))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

// unresolvedVars returns the vars of tpl found neither on the environment nor on values
func (c *ConfigRender) unresolvedVars(tpl *fasttemplate.Template, values map[string]interface{}) []string {
	var unresolved []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		_, inEnv := c.lookupEnv(tag)
		_, inValues := values[tag]
		if !inEnv && !inValues && !contains(unresolved, tag) {
			unresolved = append(unresolved, tag)
		}
		return 0, nil
	})
	return unresolved
}

// GetVars returns every var of configData
func (c *ConfigRender) GetVars(configData string) []string {
	tpl, err := fasttemplate.NewTemplate(configData, startTag, endTag)
	if err != nil {
		return []string{}
	}
	var vars []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		vars = append(vars, tag)
		return 0, nil
	})
	return vars
}

func (c *ConfigRender) lookupEnv(tag string) (string, bool) {
	return c.LookupEnvFunc(c.EnvPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

func contains(vars []string, search string) bool {
	for _, v := range vars {
		if v == search {
			return true
		}
	}
	return false
}

func readFileToString(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	var raw map[string]interface{}
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser())
		if err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		raw = k.Raw()
	case "yml", "yaml":
		if err := yaml.Unmarshal([]byte(fileData), &raw); err != nil {
			return fileData, fmt.Errorf("error loading yaml file. Err: %w", err)
		}
	case "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
	tomlData, err := toml.Parser().Marshal(raw)
	if err != nil {
		return fileData, fmt.Errorf("error converting %s to toml. Err: %w", fileType, err)
	}
	return string(tomlData), nil
}
