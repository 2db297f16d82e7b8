package terminal

// DefaultScript is the about-me session shown in the hero terminal.
var DefaultScript = Script{
	{Prompt: "whoami", Output: "Walaa Mohamed - cybersecurity specialist & full-stack developer"},
	{Prompt: "cat skills.txt", Output: "React  Next.js  TypeScript  Python  Node.js  Git"},
	{Prompt: "ls projects/", Output: "ai-threat-detection/  portfolio/  insta-clone/"},
}
