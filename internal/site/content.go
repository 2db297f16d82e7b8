package site

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	HeroIntro = `I build **secure**, well-crafted web applications and explore how machine
learning can help defend networks. Currently focused on threat detection and
modern front-end engineering.`

	AboutMe = `I'm a developer who enjoys the space where *security* meets *design*.
Most of my projects start with a question: how would an attacker see this,
and how would a user feel using it?

When I'm not coding I'm usually reading about new attack techniques, sketching
interfaces, or polishing this site.`
)

// Badges are the role labels shown above the hero heading.
var Badges = []string{"Cybersecurity Specialist", "Full-Stack Developer"}

// Skill is one entry of the about section grid.
type Skill struct {
	Name string
	Icon string
}

var Skills = []Skill{
	{Name: "React", Icon: "react"},
	{Name: "Next.js", Icon: "nextdotjs"},
	{Name: "Tailwind", Icon: "tailwindcss"},
	{Name: "TypeScript", Icon: "typescript"},
	{Name: "Python", Icon: "python"},
	{Name: "HTML5", Icon: "html5"},
	{Name: "CSS3", Icon: "css3"},
	{Name: "Node.js", Icon: "nodedotjs"},
	{Name: "Git", Icon: "git"},
}

// Project is a card of the projects section. Description is markdown.
type Project struct {
	Title       string
	Description string
	Link        string
}

var Projects = []Project{
	{
		Title:       "AI Threat Detection",
		Description: "A smart system for detecting cyberattacks using machine learning (UNSW-NB15 dataset).",
		Link:        "https://github.com/wxmohd/ai-threat-detection",
	},
	{
		Title:       "Portfolio Website",
		Description: "My personal website, written in **Go** with a WebAssembly front end. This site!",
		Link:        "https://walaa.vercel.app",
	},
	{
		Title:       "Instagram Clone",
		Description: "A simplified clone with a real-time follow system, styled with ShadCN UI.",
		Link:        "https://github.com/wxmohd/insta-clone",
	},
}

// renderedProject is a Project with its description already turned into HTML.
type renderedProject struct {
	Title       string
	Description template.HTML
	Link        string
}

// Content is the page copy rendered once at startup.
type Content struct {
	Hero     template.HTML
	About    template.HTML
	Badges   []string
	Skills   []Skill
	Projects []renderedProject
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Typographer))

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// Raw HTML in the source is dropped; the renderer is not in unsafe mode.
	return template.HTML(buf.String()), nil
}

// BuildContent renders the markdown copy of the page.
func BuildContent() (*Content, error) {
	hero, err := renderMarkdown(HeroIntro)
	if err != nil {
		return nil, fmt.Errorf("rendering hero: %w", err)
	}
	about, err := renderMarkdown(AboutMe)
	if err != nil {
		return nil, fmt.Errorf("rendering about: %w", err)
	}

	c := &Content{Hero: hero, About: about, Badges: Badges, Skills: Skills}
	for _, p := range Projects {
		desc, err := renderMarkdown(p.Description)
		if err != nil {
			return nil, fmt.Errorf("rendering project %q: %w", p.Title, err)
		}
		c.Projects = append(c.Projects, renderedProject{Title: p.Title, Description: desc, Link: p.Link})
	}
	return c, nil
}
