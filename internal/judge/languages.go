package judge

import "fmt"

const (
	LangJavaScript = "javascript"
	LangPython     = "python"
	LangJava       = "java"
	LangCpp        = "cpp"
	LangCSharp     = "csharp"
)

type LanguageConfig struct {
	SourceFile       string
	CompileCommand   []string // Empty for interpreted languages
	RunCommand       []string
	NeedsCompilation bool
}

var languageConfigs = map[string]LanguageConfig{
	LangJavaScript: {
		SourceFile: "main.js",
		RunCommand: []string{"node", "main.js"},
	},
	LangPython: {
		SourceFile: "main.py",
		RunCommand: []string{"python3", "main.py"},
	},
	LangJava: {
		SourceFile:       "Main.java",
		CompileCommand:   []string{"javac", "Main.java"},
		RunCommand:       []string{"java", "-Xss64m", "Main"},
		NeedsCompilation: true,
	},
	LangCpp: {
		SourceFile:       "main.cpp",
		CompileCommand:   []string{"g++", "-std=c++17", "-O2", "-o", "solution", "main.cpp"},
		RunCommand:       []string{"./solution"},
		NeedsCompilation: true,
	},
	LangCSharp: {
		SourceFile:       "main.cs",
		CompileCommand:   []string{"mcs", "-out:solution.exe", "main.cs"},
		RunCommand:       []string{"mono", "solution.exe"},
		NeedsCompilation: true,
	},
}

// GetLanguageConfig resolves the toolchain configuration for a language tag.
func GetLanguageConfig(language string) (LanguageConfig, error) {
	cfg, ok := languageConfigs[language]
	if !ok {
		return LanguageConfig{}, fmt.Errorf("unsupported language: %s", language)
	}
	return cfg, nil
}

// SupportedLanguages lists the language tags the executor accepts.
func SupportedLanguages() []string {
	return []string{LangJavaScript, LangPython, LangJava, LangCpp, LangCSharp}
}
