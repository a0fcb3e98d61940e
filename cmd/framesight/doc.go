// Command framesight runs the video analysis pipeline from the terminal:
// analyze an extracted frame manifest, browse the report catalog, and manage
// configuration.
package main
