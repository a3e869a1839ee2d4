// Command storyforge is the CLI for the storyboard studio: it turns a product
// concept into a storyboard of generated panel images and clips, and manages
// the projects they are saved into.
package main
