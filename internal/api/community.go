package api

import (
	"context"
	"fmt"
	"net/url"
)

// GetPosts returns a page of community posts, newest first.
func (c *Client) GetPosts(ctx context.Context, limit, skip int) ([]Post, error) {
	var posts []Post
	path := fmt.Sprintf("/community/posts?limit=%d&skip=%d", limit, skip)
	if err := c.get(ctx, path, &posts); err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}
	return posts, nil
}

// CreatePost publishes a post as the current member.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (*Post, error) {
	var post Post
	if err := c.post(ctx, "/community/posts", p, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// LikePost toggles the current member's like on a post.
func (c *Client) LikePost(ctx context.Context, id string) error {
	return c.post(ctx, "/community/posts/"+url.PathEscape(id)+"/like", nil, nil)
}

// GetCommunityStats returns forum totals.
func (c *Client) GetCommunityStats(ctx context.Context) (*CommunityStats, error) {
	var stats CommunityStats
	if err := c.get(ctx, "/community/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
